package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd to be true")
	}
	if cfg.Data.Dir != "/tmp/minshop-data" {
		t.Fatalf("unexpected data dir %q", cfg.Data.Dir)
	}
	if got := cfg.JWT.Expiration(); got != 60*time.Minute {
		t.Fatalf("expected jwt expiration 60m, got %v", got)
	}
	if cfg.Checkout.ExpressShippingFee != 20 {
		t.Fatalf("expected default express fee 20, got %d", cfg.Checkout.ExpressShippingFee)
	}
	if cfg.Checkout.IdempotencyTTL != 168*time.Hour {
		t.Fatalf("unexpected idempotency ttl %v", cfg.Checkout.IdempotencyTTL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("MINSHOP_JWT_SECRET"); err != nil {
		t.Fatalf("failed to unset jwt secret: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("MINSHOP_APP_ENV", "prod")
	t.Setenv("MINSHOP_DATA_DIR", "/tmp/minshop-data")
	t.Setenv("MINSHOP_JWT_SECRET", "secret")
	t.Setenv("MINSHOP_JWT_EXPIRATION_MINUTES", "60")
}
