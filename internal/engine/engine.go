package engine

import (
	"context"

	"kkjson/internal/logging"
	"kkjson/internal/pipeline"
	"kkjson/internal/spec"
	"kkjson/internal/telemetry"
)

type Engine struct {
	runID   string
	job     spec.File
	runner  *pipeline.Runner
	metrics *telemetry.Metrics
}

func (e *Engine) RunID() string { return e.runID }

// Run converts the input once. Counters are written to the metrics
// textfile whether or not the run succeeds.
func (e *Engine) Run(ctx context.Context) error {
	log := logging.L().With("run_id", e.runID)
	log.Info("conversion started",
		"input", e.job.Source.Path,
		"key", e.job.Transform.GroupingKey,
		"sinks", e.job.Sinks)

	sum, err := e.runner.Run(ctx)
	if err == nil {
		e.metrics.MarkSuccess()
	}
	if werr := e.metrics.WriteTextfile(e.job.Metrics.Textfile); werr != nil {
		log.Warn("metrics textfile not written", "path", e.job.Metrics.Textfile, "err", werr)
	}
	if err != nil {
		return err
	}

	log.Info("conversion finished",
		"documents", sum.Households,
		"rows", sum.Rows,
		"skipped", sum.Skipped,
		"output", e.job.SinkConfigs.File.Dir)
	return nil
}
