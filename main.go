package main

import (
	"os"

	"github.com/nethravigil/favicongen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
