package config

import (
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"secretKey": map[string]any{
			"access": "",
		},
		"auth": map[string]any{
			"bcryptCost":      12,
			"accessTokenTTL":  "15m",
			"refreshTokenTTL": "168h",
		},
		"redis": map[string]any{
			"poolSize": 10,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "AUTH_BCRYPTCOST", want: "auth.bcryptCost"},
		{envKey: "REDIS_POOLSIZE", want: "redis.poolSize"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Auth.BcryptCost != 12 {
		t.Fatalf("BcryptCost = %d, want 12", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL = %s, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL = %s, want 168h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.OTP.Digits != 6 {
		t.Fatalf("OTP.Digits = %d, want 6", cfg.OTP.Digits)
	}
	if cfg.OTP.TTL != 2*time.Minute {
		t.Fatalf("OTP.TTL = %s, want 2m", cfg.OTP.TTL)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.BcryptCost = 10
	cfg.OTP.TTL = 5 * time.Minute
	cfg.ApplyDefaults()

	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want 10", cfg.Auth.BcryptCost)
	}
	if cfg.OTP.TTL != 5*time.Minute {
		t.Fatalf("OTP.TTL = %s, want 5m", cfg.OTP.TTL)
	}
}
