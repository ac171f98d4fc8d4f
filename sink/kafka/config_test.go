package kafka

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_YAMLEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "kafka_sink.yml")
	yml := []byte(`schema_version: v1
brokers: [b1:9092, b2:9092]
topic: kk-docs
timeout: 2s
`)
	require.NoError(t, os.WriteFile(p, yml, 0o644))
	t.Setenv("KKJSON_KAFKA_TOPIC", "kk-override")
	t.Setenv("KKJSON_KAFKA_COMPRESSION", "zstd")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Brokers)
	require.Equal(t, "kk-override", cfg.Topic, "env overrides the file")
	require.Equal(t, "zstd", cfg.Compression)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.Equal(t, int16(-1), cfg.Acks)
	require.Equal(t, "kkjson", cfg.ClientID)
	require.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Equal(t, "kartu-keluarga", cfg.Topic)
	require.Len(t, cfg.Brokers, 1)
}

func TestLoadConfig_InvalidSchema(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kafka_sink.yml")
	require.NoError(t, os.WriteFile(p, []byte("schema_version: v9\n"), 0o644))
	_, err := LoadConfig(p)
	require.Error(t, err)
}
