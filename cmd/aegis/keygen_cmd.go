package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	cryptoinfra "aegis/internal/infra/crypto"
)

// runKeygen prints fresh AES-256 key material: a single base64 key by
// default, or AEGIS_COMMUNITY_KEYS-formatted pairs with --communities.
func runKeygen(args []string) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var communities string
	fs.StringVar(&communities, "communities", "", "emit NAME=BASE64KEY pairs for these names")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	names := splitList(communities)
	if len(names) == 0 {
		key, err := randomKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
			return 1
		}
		if err := writeOutput("", []byte(base64.StdEncoding.EncodeToString(key))); err != nil {
			fmt.Fprintf(os.Stderr, "write key: %v\n", err)
			return 1
		}
		return 0
	}

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		key, err := randomKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate key for %s: %v\n", name, err)
			return 1
		}
		pairs = append(pairs, name+"="+base64.StdEncoding.EncodeToString(key))
	}
	if err := writeOutput("", []byte(strings.Join(pairs, ","))); err != nil {
		fmt.Fprintf(os.Stderr, "write keys: %v\n", err)
		return 1
	}
	return 0
}

func randomKey() ([]byte, error) {
	key := make([]byte, cryptoinfra.AESKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
