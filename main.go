package main

import "github.com/klytics/sheetcanvas/cmd"

func main() {
	cmd.Execute()
}
