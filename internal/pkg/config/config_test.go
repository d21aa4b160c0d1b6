package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %q", cfg.Port)
	}
	if cfg.Mongo.Database != "doctors_portal" {
		t.Fatalf("expected doctors_portal, got %q", cfg.Mongo.Database)
	}
	if cfg.Payment.Currency != "usd" {
		t.Fatalf("expected usd, got %q", cfg.Payment.Currency)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadWith_ProjectIDFromServiceAccount(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"FIREBASE_SERVICE_ACCOUNT": `{"type":"service_account","project_id":"doctors-portal-test"}`,
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Firebase.ProjectID != "doctors-portal-test" {
		t.Fatalf("expected project id from service account, got %q", cfg.Firebase.ProjectID)
	}
}

func TestLoadWith_ExplicitProjectIDWins(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"FIREBASE_PROJECT_ID":      "explicit",
		"FIREBASE_SERVICE_ACCOUNT": `{"project_id":"from-json"}`,
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Firebase.ProjectID != "explicit" {
		t.Fatalf("expected explicit project id, got %q", cfg.Firebase.ProjectID)
	}
}

func TestLoadWith_BadServiceAccount(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"FIREBASE_SERVICE_ACCOUNT": "{not json",
	}))
	if err == nil {
		t.Fatalf("expected error for malformed service account JSON")
	}
}
