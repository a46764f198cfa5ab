package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"payment-broker.backend/internal/config"
	"payment-broker.backend/pkg/jwt"
)

type tokenIssuer interface {
	GenerateToken(subject, role string) (string, error)
}

type adminTokenDeps struct {
	loadCfg   func() (*config.Config, error)
	newIssuer func(secret string, ttl time.Duration) tokenIssuer
	now       func() time.Time
	out       io.Writer
}

func defaultAdminTokenDeps() adminTokenDeps {
	return adminTokenDeps{
		loadCfg: config.Load,
		newIssuer: func(secret string, ttl time.Duration) tokenIssuer {
			return jwt.NewJWTService(secret, ttl)
		},
		now: time.Now,
		out: os.Stdout,
	}
}

func resolveTTL(flagTTL, configured time.Duration) time.Duration {
	if flagTTL > 0 {
		return flagTTL
	}
	return configured
}

func runAdminToken(args []string, deps adminTokenDeps) error {
	def := defaultAdminTokenDeps()
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.newIssuer == nil {
		deps.newIssuer = def.newIssuer
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-token", flag.ContinueOnError)
	subjectFlag := fs.String("subject", "", "operator name recorded in the token (required)")
	ttlFlag := fs.Duration("ttl", 0, "token lifetime, defaults to JWT_EXPIRY")
	if err := fs.Parse(args); err != nil {
		return err
	}

	subject := strings.TrimSpace(*subjectFlag)
	if subject == "" {
		return fmt.Errorf("--subject is required")
	}

	cfg, err := deps.loadCfg()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is empty")
	}

	ttl := resolveTTL(*ttlFlag, cfg.JWT.Expiry)
	token, err := deps.newIssuer(cfg.JWT.Secret, ttl).GenerateToken(subject, jwt.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Issued admin token")
	_, _ = fmt.Fprintf(deps.out, "subject=%s\n", subject)
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", deps.now().Add(ttl).UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "ADMIN_TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runAdminToken(os.Args[1:], defaultAdminTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
