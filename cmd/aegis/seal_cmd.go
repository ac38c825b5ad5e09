package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"aegis/internal/config"
	"aegis/internal/domain"
	"aegis/pkg/seal"
)

func runSeal(args []string) int {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var classification string
	var rel string
	var coi string
	var coiOperator string
	var caveats string
	var country string
	var objectID string
	var objectType string
	var owner string
	var owningOrg string
	var contentType string
	var chunkSize int
	var kasURL string
	var sign bool

	fs.StringVar(&inPath, "in", "", "content file")
	fs.StringVar(&outPath, "out", "", "output object path (default stdout)")
	fs.StringVar(&classification, "classification", "", "classification level")
	fs.StringVar(&rel, "rel", "", "releasable-to countries, comma separated")
	fs.StringVar(&coi, "coi", "", "communities of interest, comma separated")
	fs.StringVar(&coiOperator, "coi-operator", "", "COI operator (ALL or ANY)")
	fs.StringVar(&caveats, "caveats", "", "handling caveats, comma separated")
	fs.StringVar(&country, "country", "", "originating country")
	fs.StringVar(&objectID, "object-id", "", "object id (default generated)")
	fs.StringVar(&objectType, "object-type", "", "object type")
	fs.StringVar(&owner, "owner", "", "owner id")
	fs.StringVar(&owningOrg, "owning-org", "", "owning organization")
	fs.StringVar(&contentType, "content-type", "", "content MIME type")
	fs.IntVar(&chunkSize, "chunk-size", 0, "ciphertext chunk size in bytes (0 keeps one chunk)")
	fs.StringVar(&kasURL, "kas-url", "", "key access service URL")
	fs.BoolVar(&sign, "sign", false, "sign the policy with AEGIS_HMAC_KEY_BASE64")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || classification == "" || rel == "" {
		fmt.Fprintln(os.Stderr, "seal requires --in, --classification and --rel")
		return 1
	}

	content, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read content: %v\n", err)
		return 1
	}

	level, err := domain.ParseClassification(classification)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse classification: %v\n", err)
		return 1
	}

	cfg := config.FromEnv()
	provider, cleanup, err := newKeyProvider(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "key provider: %v\n", err)
		return 1
	}
	defer cleanup()

	opts := seal.Options{
		Classification:     level,
		ReleasabilityTo:    splitList(rel),
		COI:                splitList(coi),
		COIOperator:        domain.COIOperator(strings.ToUpper(coiOperator)),
		Caveats:            splitList(caveats),
		OriginatingCountry: country,
		ObjectID:           objectID,
		ObjectType:         objectType,
		Owner:              owner,
		OwningOrganization: owningOrg,
		ContentType:        contentType,
		ChunkSize:          chunkSize,
		KASURL:             firstNonEmpty(kasURL, cfg.KASURL),
		Keys:               provider,
	}
	if chunkSize == 0 {
		opts.ChunkSize = cfg.ChunkSize
	}
	if sign {
		signer, err := newSigner(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "signer: %v\n", err)
			return 1
		}
		if signer == nil {
			fmt.Fprintln(os.Stderr, "--sign requires AEGIS_HMAC_KEY_BASE64")
			return 1
		}
		opts.Signer = signer
	}

	obj, err := seal.Seal(context.Background(), content, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seal: %v\n", err)
		return 1
	}

	payload, err := seal.MarshalObject(obj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode object: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write object: %v\n", err)
		return 1
	}
	return 0
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
