package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"aegis/internal/config"
	"aegis/pkg/seal"
)

func runOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var keyB64 string

	fs.StringVar(&inPath, "in", "", "sealed object file")
	fs.StringVar(&outPath, "out", "", "plaintext output path (default stdout)")
	fs.StringVar(&keyB64, "key-base64", "", "explicit decryption key")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "open requires --in")
		return 1
	}

	obj, err := readObject(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	opts := seal.OpenOptions{}
	if keyB64 != "" {
		key, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode key: %v\n", err)
			return 1
		}
		opts.Key = key
	}

	cfg := config.FromEnv()
	provider, cleanup, err := newKeyProvider(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "key provider: %v\n", err)
		return 1
	}
	defer cleanup()
	opts.Keys = provider

	plain, err := seal.Open(context.Background(), obj, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, plain); err != nil {
		fmt.Fprintf(os.Stderr, "write plaintext: %v\n", err)
		return 1
	}
	return 0
}
