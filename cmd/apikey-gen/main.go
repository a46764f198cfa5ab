package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"payment-broker.backend/internal/config"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/crypto"
)

const maxCount = 100

var generateKeyFn = crypto.GenerateAPIKey

type credential struct {
	apiKey string
	prefix string
	hash   string
}

func validateCount(count int) error {
	if count <= 0 || count > maxCount {
		return fmt.Errorf("invalid count: %d (must be between 1 and %d)", count, maxCount)
	}
	return nil
}

// buildCredentials generates count tenant API keys together with the
// prefix and hash the broker stores for each of them
func buildCredentials(count int, hasher entities.Hasher) ([]credential, error) {
	out := make([]credential, 0, count)
	for i := 0; i < count; i++ {
		value, err := generateKeyFn()
		if err != nil {
			return nil, err
		}
		key, err := entities.NewApiKey(value, "", hasher)
		if err != nil {
			return nil, err
		}
		out = append(out, credential{apiKey: value, prefix: key.KeyPrefix, hash: key.KeyHash})
	}
	return out, nil
}

func run(args []string, loadCfg func() (*config.Config, error), out io.Writer) error {
	fs := flag.NewFlagSet("apikey-gen", flag.ContinueOnError)
	count := fs.Int("count", 1, "number of keys to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateCount(*count); err != nil {
		return err
	}

	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	hasher, err := crypto.NewEncryptionService(cfg.Security.EncryptionKey, cfg.Security.HashSalt)
	if err != nil {
		return fmt.Errorf("failed to initialize encryption: %w", err)
	}

	creds, err := buildCredentials(*count, hasher)
	if err != nil {
		return fmt.Errorf("failed to generate api key: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Generated tenant API credentials")
	for _, c := range creds {
		_, _ = fmt.Fprintf(out, "API_KEY=%s\n", c.apiKey)
		_, _ = fmt.Fprintf(out, "KEY_PREFIX=%s\n", c.prefix)
		_, _ = fmt.Fprintf(out, "KEY_HASH=%s\n", c.hash)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], config.Load, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
