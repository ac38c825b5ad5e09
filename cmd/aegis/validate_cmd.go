package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"aegis/internal/config"
	cryptoinfra "aegis/internal/infra/crypto"
	"aegis/internal/usecase"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var strict bool
	var allowTestBypass bool

	fs.StringVar(&inPath, "in", "", "sealed object file")
	fs.BoolVar(&strict, "strict", false, "treat missing binding hashes as errors")
	fs.BoolVar(&allowTestBypass, "allow-test-bypass", false, "accept placeholder-hash test resources")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "validate requires --in")
		return 1
	}

	obj, err := readObject(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	cfg := config.FromEnv()
	verifier, err := newVerifier(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verifier: %v\n", err)
		return 1
	}

	validator := &usecase.IntegrityValidator{
		Crypto:   cryptoinfra.NewService(nil),
		Verifier: verifier,
		Options: usecase.ValidatorOptions{
			StrictMode:      strict || cfg.StrictMode,
			AllowTestBypass: allowTestBypass || cfg.AllowTestBypass,
			VerifierTimeout: cfg.VerifierTimeout(),
		},
	}
	result := validator.Execute(context.Background(), usecase.ValidateRequest{Object: obj})

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	if err := writeOutput("", payload); err != nil {
		fmt.Fprintf(os.Stderr, "write result: %v\n", err)
		return 1
	}
	if !result.Valid {
		return 1
	}
	return 0
}
