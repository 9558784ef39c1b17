package main

import (
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/born-ml/retinex/internal/imaging"
)

func runJoin(args []string) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	mode := fs.String("mode", "rgb", "Output mode: rgb or l (grayscale)")
	left := fs.String("left", "", "Left PNG image")
	right := fs.String("right", "", "Right PNG image")
	out := fs.String("out", "", "Output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *left == "" || *right == "" || *out == "" {
		return fmt.Errorf("-left, -right and -out are required")
	}

	a, err := imaging.LoadPNG(*left)
	if err != nil {
		return err
	}
	b, err := imaging.LoadPNG(*right)
	if err != nil {
		return err
	}

	var joined image.Image
	switch *mode {
	case "rgb":
		joined, err = imaging.JoinRGBHorizontal(a, b)
	case "l", "L":
		joined, err = imaging.JoinLHorizontal(a, b)
	default:
		return fmt.Errorf("unknown mode %q (want rgb or l)", *mode)
	}
	if err != nil {
		return err
	}

	if err := imaging.SavePNG(*out, joined); err != nil {
		return err
	}
	size := joined.Bounds().Size()
	log.Printf("joined mode=%s out=%s width=%d height=%d", *mode, *out, size.X, size.Y)
	return nil
}
