package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"payment-broker.backend/internal/config"
	"payment-broker.backend/pkg/crypto"
)

var (
	printfFn  = fmt.Printf
	fatalfFn  = log.Fatalf
	loadCfgFn = config.Load
)

func resolveSecret(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errors.New("usage: hash-gen <terminal-secret>")
	}
	return args[0], nil
}

// protectSecret returns the lookup hash and the ciphertext the broker
// stores for a terminal security key
func protectSecret(cfg *config.Config, secret string) (hash, encrypted string, err error) {
	svc, err := crypto.NewEncryptionService(cfg.Security.EncryptionKey, cfg.Security.HashSalt)
	if err != nil {
		return "", "", err
	}
	encrypted, err = svc.Encrypt(secret)
	if err != nil {
		return "", "", err
	}
	return svc.Hash(secret), encrypted, nil
}

func main() {
	secret, err := resolveSecret(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	cfg, err := loadCfgFn()
	if err != nil {
		fatalfFn("Failed to load config: %v", err)
		return
	}

	hash, encrypted, err := protectSecret(cfg, secret)
	if err != nil {
		fatalfFn("Failed to protect secret: %v", err)
		return
	}

	printfFn("SECRET_HASH=%s\n", hash)
	printfFn("SECRET_ENCRYPTED=%s\n", encrypted)
}
