// Package opc gives read access to the parts and relationship files of an
// Open Packaging Conventions container (the zip layout behind .xlsx files).
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klytics/sheetcanvas/internal/errors"
)

// maxPartSize caps how much of a single part is read into memory.
const maxPartSize = 256 << 20

// Package is an opened OPC container.
type Package struct {
	parts map[string]*zip.File
}

// OpenFile opens the package at path.
func OpenFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return Open(data)
}

// Open reads a package from an in-memory zip archive.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "the file does not appear to be a valid ZIP archive")
	}
	p := &Package{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.parts[normalize(f.Name)] = f
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[normalize(name)]
	return ok
}

// Part returns the content of the named part.
func (p *Package) Part(name string) ([]byte, error) {
	f, ok := p.parts[normalize(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodePartNotFound, "part %s not found in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open part %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read part %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, errors.New(errors.ErrCodeInvalidPackage, "part %s exceeds %d bytes", name, maxPartSize)
	}
	return data, nil
}

// PartNames returns all part names in lexical order.
func (p *Package) PartNames() []string {
	names := make([]string, 0, len(p.parts))
	for n := range p.parts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Relationships reads the relationship file belonging to part. A part
// without a relationship file has an empty set.
func (p *Package) Relationships(part string) (Relationships, error) {
	relsPath := RelsPath(part)
	if !p.Has(relsPath) {
		return Relationships{}, nil
	}
	data, err := p.Part(relsPath)
	if err != nil {
		return nil, err
	}
	return ParseRelationships(part, data)
}

// RelsPath returns the path of the relationship file for part, e.g.
// "xl/drawings/drawing1.xml" -> "xl/drawings/_rels/drawing1.xml.rels".
func RelsPath(part string) string {
	part = normalize(part)
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(name, "/")
}
