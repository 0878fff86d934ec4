package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets the given variables for the test. t.Setenv registers the
// restore before the unset happens.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
		}
		os.Unsetenv(k)
	}
}

func resetEnv(t *testing.T) {
	t.Helper()
	clearEnv(t, "PORT", "AWS_REGION", "KEYSPACES_ROOT_CERT", "KEYSPACES_USERNAME",
		"KEYSPACES_PASSWORD", "PLUGIN_TOKEN_FILE", "PLUGIN_DEV_DB", "PLUGIN_CONFIG_FILE")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("KEYSPACES_USERNAME", "svc-user")
		t.Setenv("KEYSPACES_PASSWORD", "svc-pass")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 4355 {
			t.Errorf("port = %v, want 4355", cfg.Server.Port)
		}
		if cfg.Keyspaces.Region != "us-east-1" {
			t.Errorf("region = %v, want us-east-1", cfg.Keyspaces.Region)
		}
		if cfg.Keyspaces.RootCert != "/certs/sf-class2-root.crt" {
			t.Errorf("root cert = %v, want /certs/sf-class2-root.crt", cfg.Keyspaces.RootCert)
		}
		if cfg.Plugin.TokenFile != "/var/run/argo/token" {
			t.Errorf("token file = %v, want /var/run/argo/token", cfg.Plugin.TokenFile)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("KEYSPACES_USERNAME", "svc-user")
		t.Setenv("KEYSPACES_PASSWORD", "svc-pass")
		t.Setenv("PORT", "9000")
		t.Setenv("AWS_REGION", "eu-west-1")
		t.Setenv("PLUGIN_TOKEN_FILE", "/tmp/token")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.Keyspaces.Region != "eu-west-1" {
			t.Errorf("region = %v, want eu-west-1", cfg.Keyspaces.Region)
		}
		if cfg.Plugin.TokenFile != "/tmp/token" {
			t.Errorf("token file = %v, want /tmp/token", cfg.Plugin.TokenFile)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		resetEnv(t)

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for missing credentials")
		}
	})

	t.Run("missing password", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("KEYSPACES_USERNAME", "svc-user")

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for missing password")
		}
	})

	t.Run("dev db skips credential check", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("PLUGIN_DEV_DB", "/tmp/tenants.db")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Plugin.DevDB != "/tmp/tenants.db" {
			t.Errorf("dev db = %v, want /tmp/tenants.db", cfg.Plugin.DevDB)
		}
	})

	t.Run("config file under env", func(t *testing.T) {
		resetEnv(t)

		path := filepath.Join(t.TempDir(), "plugin.yaml")
		data := []byte("server:\n  port: 5000\nkeyspaces:\n  username: file-user\n  password: file-pass\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PLUGIN_CONFIG_FILE", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 5000 {
			t.Errorf("port = %v, want 5000", cfg.Server.Port)
		}
		if cfg.Keyspaces.Username != "file-user" {
			t.Errorf("username = %v, want file-user", cfg.Keyspaces.Username)
		}

		// Environment wins over the file.
		t.Setenv("PORT", "6000")
		cfg, err = Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 6000 {
			t.Errorf("port = %v, want 6000", cfg.Server.Port)
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		resetEnv(t)
		t.Setenv("PLUGIN_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for missing config file")
		}
	})
}
