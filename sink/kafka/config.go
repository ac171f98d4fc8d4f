package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "KKJSON_KAFKA_"

type Config struct {
	Brokers     []string      `koanf:"brokers"`
	Topic       string        `koanf:"topic"`
	Acks        int16         `koanf:"required_acks"` // 1 or -1; 0 selects -1
	Version     string        `koanf:"version"`
	ClientID    string        `koanf:"client_id"`
	TLSEn       bool          `koanf:"tls_enabled"`
	SASLUser    string        `koanf:"sasl_user"`
	SASLPass    string        `koanf:"sasl_pass"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  int           `koanf:"max_retries"`
	Compression string        `koanf:"compression"` // none|gzip|snappy|lz4|zstd
	MaxMsgBytes int           `koanf:"max_message_bytes"`
	RunID       string        `koanf:"-"` // set by the pipeline, sent as a header
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `KKJSON_KAFKA_`, `__` separating nested keys).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "kartu-keluarga"
	}
	if c.Acks == 0 {
		c.Acks = int16(-1)
	}
	if c.Version == "" {
		c.Version = "2.1.0"
	}
	if c.ClientID == "" {
		c.ClientID = "kkjson"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Compression == "" {
		c.Compression = "none"
	}
}
