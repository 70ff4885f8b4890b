// Copyright (c) 2025 Neomantra Corp

package main

import (
	"fmt"
	"os"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/tui"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: nrbf-go-tui <file>\n")
		os.Exit(1)
	}

	reader, closer, err := nrbf.MakeCompressedReader(os.Args[1], false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening %s: %s\n", os.Args[1], err.Error())
		os.Exit(1)
	}
	defer closer.Close()

	root, err := nrbf.Decode(reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding %s: %s\n", os.Args[1], err.Error())
		os.Exit(1)
	}

	if err := tui.Run(tui.Config{Root: root}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
