package opc

import (
	"encoding/xml"
	"path"
	"strings"

	"github.com/klytics/sheetcanvas/internal/errors"
)

// Relationship type suffixes used by spreadsheet packages.
const (
	RelTypeWorksheet = "/worksheet"
	RelTypeDrawing   = "/drawing"
	RelTypeImage     = "/image"
	RelTypeTheme     = "/theme"
)

type xmlRelationships struct {
	Items []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// Target is a resolved relationship target.
type Target struct {
	ID       string
	Type     string
	Path     string // package part path, or the raw URL for external targets
	External bool
}

// Relationships maps relationship IDs to their targets.
type Relationships map[string]Target

// ParseRelationships decodes a .rels part. Relative targets are resolved
// against the directory of source, the part that owns the relationships.
func ParseRelationships(source string, data []byte) (Relationships, error) {
	var doc xmlRelationships
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "could not decode relationships of %s", source)
	}
	rels := make(Relationships, len(doc.Items))
	for _, r := range doc.Items {
		if r.ID == "" {
			continue
		}
		external := strings.EqualFold(r.TargetMode, "External")
		target := r.Target
		if !external {
			target = ResolveTarget(source, r.Target)
		}
		rels[r.ID] = Target{ID: r.ID, Type: r.Type, Path: target, External: external}
	}
	return rels, nil
}

// Lookup returns the target for id.
func (r Relationships) Lookup(id string) (Target, bool) {
	if id == "" {
		return Target{}, false
	}
	t, ok := r[id]
	return t, ok
}

// FirstOfType returns the first target, by ID, whose type ends with suffix.
func (r Relationships) FirstOfType(suffix string) (Target, bool) {
	var best Target
	found := false
	for _, t := range r {
		if !strings.HasSuffix(t.Type, suffix) {
			continue
		}
		if !found || t.ID < best.ID {
			best, found = t, true
		}
	}
	return best, found
}

// ResolveTarget resolves a relationship target against the part that
// declares it. Absolute targets ("/xl/media/image1.png") are package-rooted.
func ResolveTarget(source, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(normalize(source)), target))
}
