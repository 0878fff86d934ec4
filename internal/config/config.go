package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Keyspaces KeyspacesConfig `koanf:"keyspaces"`
	Plugin    PluginConfig    `koanf:"plugin"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type KeyspacesConfig struct {
	Region   string `koanf:"region"`
	RootCert string `koanf:"root_cert"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type PluginConfig struct {
	// TokenFile is the secret file holding the bearer token the
	// ApplicationSet controller presents on every request.
	TokenFile string `koanf:"token_file"`
	// DevDB switches the tenant store to a local SQLite database. Keyspaces
	// credentials are not required when it is set.
	DevDB string `koanf:"dev_db"`
}

// envKeys maps the environment variables this service recognizes onto config
// keys. Anything else in the environment is ignored.
var envKeys = map[string]string{
	"PORT":                "server.port",
	"AWS_REGION":          "keyspaces.region",
	"KEYSPACES_ROOT_CERT": "keyspaces.root_cert",
	"KEYSPACES_USERNAME":  "keyspaces.username",
	"KEYSPACES_PASSWORD":  "keyspaces.password",
	"PLUGIN_TOKEN_FILE":   "plugin.token_file",
	"PLUGIN_DEV_DB":       "plugin.dev_db",
}

// Load builds the process configuration: defaults, then an optional YAML
// file named by PLUGIN_CONFIG_FILE, then the environment on top.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("PLUGIN_CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 4355)
	}
	if !k.Exists("keyspaces.region") {
		k.Set("keyspaces.region", "us-east-1")
	}
	if !k.Exists("keyspaces.root_cert") {
		k.Set("keyspaces.root_cert", "/certs/sf-class2-root.crt")
	}
	if !k.Exists("plugin.token_file") {
		k.Set("plugin.token_file", "/var/run/argo/token")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Plugin.DevDB == "" {
		if cfg.Keyspaces.Username == "" {
			return nil, fmt.Errorf("missing env KEYSPACES_USERNAME")
		}
		if cfg.Keyspaces.Password == "" {
			return nil, fmt.Errorf("missing env KEYSPACES_PASSWORD")
		}
	}

	return &cfg, nil
}
