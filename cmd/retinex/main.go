// Package main provides the retinex CLI: it evaluates the decomposition
// losses on PNG images and builds side-by-side comparison images.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("retinex: ")

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "version":
		fmt.Printf("retinex %s\n", version)
		return
	case "loss":
		err = runLoss(os.Args[2:], os.Stdout)
	case "join":
		err = runJoin(os.Args[2:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "retinex %s - Retinex decomposition losses\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  loss       Evaluate decomposition losses on PNG images")
	fmt.Fprintln(w, "  join       Place two PNG images side by side")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'retinex <command> -h' for command flags.")
}
