package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SAM_API_KEY", "key-123")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("SCAN_TIMEOUT_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("expected default port 8081, got %q", cfg.Port)
	}
	if cfg.SAMAPIKey != "key-123" {
		t.Errorf("unexpected api key %q", cfg.SAMAPIKey)
	}
	if cfg.ScanTimeoutMinutes != 10 {
		t.Errorf("expected default scan timeout 10, got %d", cfg.ScanTimeoutMinutes)
	}
}

func TestLoad_CORSOriginsSplit(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins: %v", cfg.CORSOrigins)
	}
}
