package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("env = %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool bounds = %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.ReminderSchedule == "" {
		t.Error("reminder schedule should have a default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.IsDev() {
		t.Fatalf("got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateProductionNeedsSigningKey(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("production without JWT_SIGNING_KEY should be rejected")
	}
}

func TestValidateSMSGatewayNeedsKey(t *testing.T) {
	cfg := &Config{Env: "development", SMSGatewayURL: "https://sms.example.com"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("gateway URL without API key should be rejected")
	}
	cfg.SMSGatewayAPIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
