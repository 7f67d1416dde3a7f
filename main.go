package main

import (
	"github.com/wajiha787/repolens/cmd"
)

func main() {
	cmd.Execute()
}
