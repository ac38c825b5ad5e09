package main

import (
	"fmt"
	"os"
	"path/filepath"

	"aegis/internal/config"
	"aegis/internal/domain"
	"aegis/internal/infra/keys"
	"aegis/internal/infra/signature"
	"aegis/internal/usecase"
	"aegis/pkg/seal"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "seal":
		return runSeal(args[2:])
	case "open":
		return runOpen(args[2:])
	case "validate":
		return runValidate(args[2:])
	case "inspect":
		return runInspect(args[2:])
	case "migrate":
		return runMigrate(args[2:])
	case "keygen":
		return runKeygen(args[2:])
	case "rotate":
		return runRotate(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "aegis"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s seal --in <file> --classification <level> --rel <c1,c2> [--coi <n1,n2>] [--coi-operator ALL|ANY] [--caveats <c1,c2>] [--country <code>] [--object-id <id>] [--owner <id>] [--content-type <type>] [--chunk-size <bytes>] [--kas-url <url>] [--sign] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s open --in <object.json> [--key-base64 <b64>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s validate --in <object.json> [--strict] [--allow-test-bypass]\n", name)
	fmt.Fprintf(os.Stderr, "  %s inspect --in <object.json> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s migrate --in <legacy.json> [--kas-url <url>] [--report <file>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s keygen [--communities <n1,n2>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s rotate --coi <name> [--force]\n", name)
	fmt.Fprintf(os.Stderr, "\nkey material comes from AEGIS_COMMUNITY_KEYS, AEGIS_MASTER_SECRET, AEGIS_POSTGRES_DSN and AEGIS_REDIS_ADDR; policy signing from AEGIS_HMAC_KEY_BASE64.\n")
}

// newKeyProvider assembles the provider chain from the environment:
// static pairs, then the registry (fronted by the redis cache when
// configured), then HKDF from the master secret. A nil provider with a
// nil error means no key source is configured, which is fine for
// objects sealed under per-object keys.
func newKeyProvider(cfg config.Config) (domain.CommunityKeyProvider, func() error, error) {
	cleanup := func() error { return nil }
	var chain keys.Chain

	staticKeys, err := cfg.CommunityKeyMap()
	if err != nil {
		return nil, cleanup, err
	}
	if len(staticKeys) > 0 {
		chain = append(chain, keys.NewStatic(staticKeys))
	}

	var registry *keys.Registry
	if cfg.PostgresDSN != "" {
		if registry, err = keys.OpenRegistry(cfg.PostgresDSN); err != nil {
			return nil, cleanup, fmt.Errorf("open key registry: %w", err)
		}
	}
	switch {
	case cfg.RedisAddr != "":
		var source domain.CommunityKeyProvider
		if registry != nil {
			source = registry
		}
		cache, err := keys.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, source, cfg.KeyCacheTTL())
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis key cache: %w", err)
		}
		cleanup = cache.Close
		chain = append(chain, cache)
	case registry != nil:
		chain = append(chain, registry)
	}

	if cfg.MasterSecret != "" {
		derived, err := keys.NewDerived([]byte(cfg.MasterSecret))
		if err != nil {
			return nil, cleanup, err
		}
		chain = append(chain, derived)
	}

	if len(chain) == 0 {
		return nil, cleanup, nil
	}
	return chain, cleanup, nil
}

func readObject(path string) (domain.ZTDFObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ZTDFObject{}, fmt.Errorf("read object: %w", err)
	}
	return seal.UnmarshalObject(data)
}

// newSigner returns the HMAC policy signer, nil when no key is set.
func newSigner(cfg config.Config) (*signature.HMAC, error) {
	key, err := cfg.HMACKey()
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, nil
	}
	return signature.NewHMAC(key, cfg.HMACKeyID)
}

// signerOrNil keeps a nil *HMAC from becoming a non-nil interface.
func signerOrNil(h *signature.HMAC) usecase.PolicySigner {
	if h == nil {
		return nil
	}
	return h
}

// newVerifier mirrors newSigner for the validating side. Signed objects
// checked without a key get the unconfigured-verifier warning instead
// of a hard failure.
func newVerifier(cfg config.Config) (domain.PolicySignatureVerifier, error) {
	hmac, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}
	if hmac == nil {
		return signature.Unconfigured{}, nil
	}
	return hmac, nil
}
