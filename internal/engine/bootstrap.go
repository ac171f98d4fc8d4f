package engine

import (
	"fmt"

	"github.com/google/uuid"

	"kkjson/internal/config"
	"kkjson/internal/logging"
	"kkjson/internal/pipeline"
	"kkjson/internal/spec"
	"kkjson/internal/telemetry"
)

// Config selects the job file and command-line overrides. Empty override
// fields leave the job file's value in place.
type Config struct {
	PipelineYml string

	Input       string
	Output      string
	GroupingKey string
	Encoding    string
	Sinks       []string
	MetricsFile string
	LogLevel    string
	LogJSON     *bool
}

func (c Config) apply(job *spec.File) {
	if c.Input != "" {
		job.Source.Path = c.Input
		job.Source.Kind = ""
	}
	if c.Output != "" {
		job.SinkConfigs.File.Dir = c.Output
	}
	if c.GroupingKey != "" {
		job.Transform.GroupingKey = c.GroupingKey
	}
	if c.Encoding != "" {
		job.Source.Encoding = c.Encoding
	}
	if len(c.Sinks) > 0 {
		job.Sinks = c.Sinks
	}
	if c.MetricsFile != "" {
		job.Metrics.Textfile = c.MetricsFile
	}
}

func (c Config) logOptions(job spec.File) logging.Options {
	opts := logging.FromEnv()
	if job.Log != nil {
		if job.Log.Level != "" {
			opts.Level = job.Log.Level
		}
		opts.JSON = job.Log.JSON
	}
	if c.LogLevel != "" {
		opts.Level = c.LogLevel
	}
	if c.LogJSON != nil {
		opts.JSON = *c.LogJSON
	}
	return opts
}

func Bootstrap(cfg Config) (*Engine, error) {
	// 1. job file
	job, err := config.LoadPipelineSpec(cfg.PipelineYml)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	cfg.apply(&job)
	logging.Configure(cfg.logOptions(job))

	// 2. metrics
	m := telemetry.New()
	runID := uuid.NewString()

	// 3. pipeline runner
	runner, err := pipeline.Compile(job, pipeline.Options{
		RunID:    runID,
		Observer: m,
		Ack:      m.SinkWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Engine{
		runID:   runID,
		job:     job,
		runner:  runner,
		metrics: m,
	}, nil
}
