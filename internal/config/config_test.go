package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataquality/jsonvalidator/internal/config"
)

func TestLoad_FailsWhenServerIPUnset(t *testing.T) {
	t.Setenv("DATA_QUALITY_SERVER_IP", "")
	t.Setenv("DATA_QUALITY_SERVER_PORT", "8080")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_QUALITY_SERVER_IP")
}

func TestLoad_FailsWhenServerPortUnset(t *testing.T) {
	t.Setenv("DATA_QUALITY_SERVER_IP", "0.0.0.0")
	t.Setenv("DATA_QUALITY_SERVER_PORT", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_QUALITY_SERVER_PORT")
}

func TestLoad_ReadsOverrides(t *testing.T) {
	t.Setenv("DATA_QUALITY_SERVER_IP", "127.0.0.1")
	t.Setenv("DATA_QUALITY_SERVER_PORT", "9090")
	t.Setenv("PROTO_SCHEMA_INPUT_DIR", "/schemas/in")
	t.Setenv("PROTO_SCHEMA_GENPB_DIR", "/schemas/out")
	t.Setenv("PROTOC_PATH", "/usr/bin/protoc")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "/schemas/in", cfg.ProtoSchemaInputDir)
	assert.Equal(t, "/schemas/out", cfg.ProtoSchemaGenPBDir)
	assert.Equal(t, "/usr/bin/protoc", cfg.ProtocPath)
}
