// Package config loads the server's runtime settings from environment
// variables (optionally backed by a .env file, via godotenv), per spec.md
// §6's configuration surface. CLI flags are parsed by the commands package,
// not here.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is the fully-resolved set of options the server and producer read
// at startup.
type Config struct {
	ServerIP   string
	ServerPort string

	ProtoSchemaInputDir string
	ProtoSchemaGenPBDir string
	ProtocPath          string
}

// Load reads the recognized environment variables, first attempting to
// populate the process environment from a .env file in the working
// directory (a missing file is not an error, mirroring dotenvy's
// best-effort load in the original). DATA_QUALITY_SERVER_IP and
// DATA_QUALITY_SERVER_PORT are mandatory: the original fails startup via
// `.context("SERVER_IP environment variable missing")?`, and this keeps
// that non-zero-exit-on-missing-env contract rather than papering over it
// with a default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	ip, ok := os.LookupEnv("DATA_QUALITY_SERVER_IP")
	if !ok || ip == "" {
		return Config{}, fmt.Errorf("DATA_QUALITY_SERVER_IP environment variable missing")
	}

	port, ok := os.LookupEnv("DATA_QUALITY_SERVER_PORT")
	if !ok || port == "" {
		return Config{}, fmt.Errorf("DATA_QUALITY_SERVER_PORT environment variable missing")
	}

	cfg := Config{
		ServerIP:            ip,
		ServerPort:          port,
		ProtoSchemaInputDir: os.Getenv("PROTO_SCHEMA_INPUT_DIR"),
		ProtoSchemaGenPBDir: os.Getenv("PROTO_SCHEMA_GENPB_DIR"),
		ProtocPath:          os.Getenv("PROTOC_PATH"),
	}

	return cfg, nil
}

// Addr is the listen address derived from ServerIP/ServerPort.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerIP, c.ServerPort)
}
