package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"aegis/internal/config"
	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
	"aegis/internal/usecase"
	"aegis/pkg/seal"
)

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var reportPath string
	var kasURL string

	fs.StringVar(&inPath, "in", "", "legacy record file")
	fs.StringVar(&outPath, "out", "", "output object path (default stdout)")
	fs.StringVar(&reportPath, "report", "", "migration report path (default stderr)")
	fs.StringVar(&kasURL, "kas-url", "", "key access service URL")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "migrate requires --in")
		return 1
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read legacy record: %v\n", err)
		return 1
	}
	var legacy domain.LegacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		fmt.Fprintf(os.Stderr, "decode legacy record: %v\n", err)
		return 1
	}

	cfg := config.FromEnv()
	signer, err := newSigner(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signer: %v\n", err)
		return 1
	}

	svc := cryptoinfra.NewService(nil)
	migrator := &usecase.LegacyMigrator{
		Builder: &usecase.ObjectBuilder{Crypto: svc, Signer: signerOrNil(signer)},
		Crypto:  svc,
		KASURL:  firstNonEmpty(kasURL, cfg.KASURL),
	}
	obj, report, err := migrator.Execute(context.Background(), legacy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		return 1
	}

	payload, err := seal.MarshalObject(*obj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode object: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write object: %v\n", err)
		return 1
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		return 1
	}
	if reportPath == "" {
		fmt.Fprintf(os.Stderr, "%s\n", reportJSON)
		return 0
	}
	if err := os.WriteFile(reportPath, reportJSON, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		return 1
	}
	return 0
}
