package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AegisEnv    string
	LogLevel    string
	PostgresDSN string

	// Key material sources, in the order the provider chain consults
	// them: static pairs, then HKDF from the master secret.
	CommunityKeys string
	MasterSecret  string

	HMACKeyBase64 string
	HMACKeyID     string

	KASURL    string
	ChunkSize int

	StrictMode          bool
	AllowTestBypass     bool
	VerifierTimeoutSecs int
	KeyCacheTTLSeconds  int
	KeyRotationDays     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	return Config{
		AegisEnv:            os.Getenv("AEGIS_ENV"),
		LogLevel:            envDefault("AEGIS_LOG_LEVEL", "info"),
		PostgresDSN:         os.Getenv("AEGIS_POSTGRES_DSN"),
		CommunityKeys:       os.Getenv("AEGIS_COMMUNITY_KEYS"),
		MasterSecret:        os.Getenv("AEGIS_MASTER_SECRET"),
		HMACKeyBase64:       os.Getenv("AEGIS_HMAC_KEY_BASE64"),
		HMACKeyID:           os.Getenv("AEGIS_HMAC_KEY_ID"),
		KASURL:              os.Getenv("AEGIS_KAS_URL"),
		ChunkSize:           envIntDefault("AEGIS_CHUNK_SIZE", 0),
		StrictMode:          envBoolDefault("AEGIS_STRICT_MODE", false),
		AllowTestBypass:     envBoolDefault("AEGIS_ALLOW_TEST_BYPASS", false),
		VerifierTimeoutSecs: envIntDefault("AEGIS_VERIFIER_TIMEOUT_SECONDS", 5),
		KeyCacheTTLSeconds:  envIntDefault("AEGIS_KEY_CACHE_TTL_SECONDS", 900),
		KeyRotationDays:     envIntDefault("AEGIS_KEY_ROTATION_DAYS", 90),
		RedisAddr:           os.Getenv("AEGIS_REDIS_ADDR"),
		RedisPassword:       os.Getenv("AEGIS_REDIS_PASSWORD"),
		RedisDB:             envIntDefault("AEGIS_REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func (c Config) VerifierTimeout() time.Duration {
	if c.VerifierTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.VerifierTimeoutSecs) * time.Second
}

func (c Config) KeyCacheTTL() time.Duration {
	if c.KeyCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.KeyCacheTTLSeconds) * time.Second
}

func (c Config) KeyRotationInterval() time.Duration {
	if c.KeyRotationDays <= 0 {
		return 0
	}
	return time.Duration(c.KeyRotationDays) * 24 * time.Hour
}

// CommunityKeyMap parses AEGIS_COMMUNITY_KEYS, a comma-separated list
// of NAME=BASE64KEY pairs.
func (c Config) CommunityKeyMap() (map[string][]byte, error) {
	if strings.TrimSpace(c.CommunityKeys) == "" {
		return nil, nil
	}
	keys := make(map[string][]byte)
	for _, pair := range strings.Split(c.CommunityKeys, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, encoded, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("community key entry %q is not NAME=BASE64KEY", pair)
		}
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("community key %s: %w", name, err)
		}
		keys[name] = key
	}
	return keys, nil
}

// HMACKey decodes the configured policy-signing key, nil when unset.
func (c Config) HMACKey() ([]byte, error) {
	if c.HMACKeyBase64 == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.HMACKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("AEGIS_HMAC_KEY_BASE64: %w", err)
	}
	return key, nil
}
