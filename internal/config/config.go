// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	SecretKey    []byte // 32-byte AES-256 key; nil disables code history.
	ECCLevel     string // L, M, Q or H.
	PixelScale   int
	HistoryLimit int
}

// HasSecretKey returns true when a history encryption key is configured.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Variables from a .env file (QRCODEGEN_ENV_FILE, default ".env") are applied first
// without overriding variables already set in the environment.
// Optional variables with defaults: QRCODEGEN_LISTEN_ADDR (127.0.0.1:8080),
// QRCODEGEN_DB_PATH (qrcodegen.db), QRCODEGEN_ECC_LEVEL (Q), QRCODEGEN_PIXEL_SCALE (20),
// QRCODEGEN_HISTORY_LIMIT (50). QRCODEGEN_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("QRCODEGEN_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "qrcodegen.db"
	if v, ok := os.LookupEnv("QRCODEGEN_DB_PATH"); ok {
		dbPath = v
	}

	eccLevel := "Q"
	if v, ok := os.LookupEnv("QRCODEGEN_ECC_LEVEL"); ok {
		eccLevel = strings.ToUpper(strings.TrimSpace(v))
		switch eccLevel {
		case "L", "M", "Q", "H":
		default:
			return nil, fmt.Errorf("QRCODEGEN_ECC_LEVEL must be one of L, M, Q, H, got %q", v)
		}
	}

	pixelScale, err := positiveInt("QRCODEGEN_PIXEL_SCALE", 20)
	if err != nil {
		return nil, err
	}

	historyLimit, err := positiveInt("QRCODEGEN_HISTORY_LIMIT", 50)
	if err != nil {
		return nil, err
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("QRCODEGEN_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("QRCODEGEN_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("QRCODEGEN_SECRET_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
		}
		secretKey = key
	}

	return &Config{
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
		SecretKey:    secretKey,
		ECCLevel:     eccLevel,
		PixelScale:   pixelScale,
		HistoryLimit: historyLimit,
	}, nil
}

// loadDotEnv applies the optional .env file. A missing file is not an error.
func loadDotEnv() error {
	path := ".env"
	if v, ok := os.LookupEnv("QRCODEGEN_ENV_FILE"); ok && v != "" {
		path = v
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func positiveInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0, got %d", key, n)
	}
	return n, nil
}
