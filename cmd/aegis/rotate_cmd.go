package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"aegis/internal/config"
	"aegis/internal/domain"
	"aegis/internal/infra/keys"
	"aegis/internal/usecase"
)

// runRotate replaces a community's active key in the registry. Without
// --force it only rotates keys older than AEGIS_KEY_ROTATION_DAYS.
func runRotate(args []string) int {
	fs := flag.NewFlagSet("rotate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var coiName string
	var force bool

	fs.StringVar(&coiName, "coi", "", "community name to rotate")
	fs.BoolVar(&force, "force", false, "rotate even if the active key is not due")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if coiName == "" {
		fmt.Fprintln(os.Stderr, "rotate requires --coi")
		return 1
	}

	cfg := config.FromEnv()
	if cfg.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "rotate requires AEGIS_POSTGRES_DSN")
		return 1
	}
	registry, err := keys.OpenRegistry(cfg.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open key registry: %v\n", err)
		return 1
	}
	if err := registry.AutoMigrate(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate key registry: %v\n", err)
		return 1
	}

	svc := &usecase.KeyRotationService{
		Store:    registry,
		Interval: cfg.KeyRotationInterval(),
	}

	ctx := context.Background()
	var rotated bool
	var record domain.CommunityKeyRecord
	if force {
		record, err = svc.Rotate(ctx, coiName)
		rotated = true
	} else {
		var active *domain.CommunityKeyRecord
		rotated, active, err = svc.RotateIfDue(ctx, coiName)
		if active != nil {
			record = *active
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rotate %s: %v\n", coiName, err)
		return 1
	}

	out := struct {
		Rotated   bool   `json:"rotated"`
		ID        string `json:"id"`
		Name      string `json:"name"`
		Status    string `json:"status"`
		CreatedAt string `json:"createdAt"`
	}{
		Rotated:   rotated,
		ID:        record.ID,
		Name:      record.Name,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339),
	}
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	if err := writeOutput("", payload); err != nil {
		fmt.Fprintf(os.Stderr, "write result: %v\n", err)
		return 1
	}
	return 0
}
