package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kiwari-pos/storefront/internal/config"
	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DELIVERY_FEE", "AUTH_RATE_LIMIT", "ALLOWED_ORIGINS", "ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port: got %q, want 8081", cfg.Port)
	}
	if !cfg.DeliveryFee.IsZero() {
		t.Errorf("delivery fee: got %s, want 0", cfg.DeliveryFee)
	}
	if cfg.AuthRateLimit != 5 {
		t.Errorf("auth rate limit: got %v, want 5", cfg.AuthRateLimit)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("allowed origins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DELIVERY_FEE", "10000")
	t.Setenv("ALLOWED_ORIGINS", " https://shop.example.com , ,https://admin.example.com")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port: got %q, want 9000", cfg.Port)
	}
	if !cfg.DeliveryFee.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("delivery fee: got %s, want 10000", cfg.DeliveryFee)
	}
	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Errorf("allowed origins: got %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DELIVERY_FEE", "free"},
		{"DELIVERY_FEE", "-1"},
		{"AUTH_RATE_LIMIT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("STOREFRONT_STORE_PATH", "")
	t.Setenv("STOREFRONT_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_LEGACY_PIECE_SCALING", "true")

	cfg, err := config.LoadClient()
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("timeout: got %v, want 3s", cfg.Timeout)
	}
	if !cfg.LegacyPieceScaling {
		t.Error("legacy piece scaling: got false, want true")
	}
	if want := filepath.Join(dir, ".kiwari", "session.enc"); cfg.StorePath != want {
		t.Errorf("store path: got %q, want %q", cfg.StorePath, want)
	}
}

func TestLoadClientRejectsBadTimeout(t *testing.T) {
	t.Setenv("STOREFRONT_TIMEOUT", "soon")
	if _, err := config.LoadClient(); err == nil {
		t.Fatal("expected error")
	}
}
