package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kkjson/internal/household"
	"kkjson/internal/spec"
	"kkjson/sink/file"
)

const (
	SupportedSchema = "v1"

	DefaultInput = "data_keluarga.csv"
)

// Default is the job used when no job file is given: read
// data_keluarga.csv, group by "NO KK", write hasil_json/<kk>.json.
func Default() spec.File {
	var f spec.File
	applyDefaults(&f)
	return f
}

// LoadPipelineSpec parses a job YAML, validates schema_version, resolves
// relative paths against the job file's directory and fills defaults.
// An empty path returns Default().
func LoadPipelineSpec(path string) (spec.File, error) {
	if path == "" {
		return Default(), nil
	}
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}

	base := filepath.Dir(path)
	cfg.Source.Path = resolve(base, cfg.Source.Path)
	cfg.SinkConfigs.File.Dir = resolve(base, cfg.SinkConfigs.File.Dir)
	cfg.SinkConfigs.Kafka = resolve(base, cfg.SinkConfigs.Kafka)
	cfg.Metrics.Textfile = resolve(base, cfg.Metrics.Textfile)

	applyDefaults(&cfg)
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func applyDefaults(f *spec.File) {
	if f.SchemaVersion == "" {
		f.SchemaVersion = SupportedSchema
	}
	if f.Source.Path == "" {
		f.Source.Path = DefaultInput
	}
	if f.Transform.GroupingKey == "" {
		f.Transform.GroupingKey = household.DefaultGroupingKey
	}
	if f.Transform.NameField == "" {
		f.Transform.NameField = household.DefaultNameField
	}
	if len(f.Sinks) == 0 {
		f.Sinks = []string{"file"}
	}
	if f.SinkConfigs.File.Dir == "" {
		f.SinkConfigs.File.Dir = file.DefaultDir
	}
}
