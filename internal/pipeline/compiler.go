package pipeline

import (
	"fmt"
	"strings"

	"kkjson/internal/config"
	"kkjson/internal/household"
	"kkjson/internal/spec"
	"kkjson/sink"
	"kkjson/sink/file"
	"kkjson/sink/stdout"
	"kkjson/source"

	_ "kkjson/sink/kafka"
	_ "kkjson/source/csv"
	_ "kkjson/source/xlsx"
)

type Options struct {
	// RunID tags documents on sinks that carry metadata (Kafka headers).
	RunID    string
	Observer household.Observer
	// Ack, when set, is subscribed to every sink write.
	Ack sink.EmitFn
}

func Compile(cfg spec.File, opts Options) (*Runner, error) {
	r := NewRunner()
	if err := Build(cfg, r, opts); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func Build(cfg spec.File, r *Runner, opts Options) error {
	/*──────── source ───────*/
	kind := cfg.Source.Kind
	if kind == "" {
		kind = source.KindFor(cfg.Source.Path)
	}
	src, err := source.NewAdapter(kind)
	if err != nil {
		return err
	}
	err = src.Configure(source.Config{
		Path:      cfg.Source.Path,
		Encoding:  cfg.Source.Encoding,
		Delimiter: cfg.Source.Delimiter,
		Sheet:     cfg.Source.Sheet,
	})
	if err != nil {
		return err
	}
	r.SetSource(src)

	/*──────── transform ───────*/
	r.SetTransformer(household.New(household.Config{
		GroupingKey: cfg.Transform.GroupingKey,
		NameField:   cfg.Transform.NameField,
		NAValues:    cfg.Source.NAValues,
	}, opts.Observer))

	if opts.Ack != nil {
		r.SubscribeAck(opts.Ack)
	}

	/*──────── sinks ───────*/
	for _, name := range cfg.Sinks {
		name = strings.ToLower(strings.TrimSpace(name))
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}

		switch name {
		case "file":
			err = sDrv.Configure(file.Config{Dir: cfg.SinkConfigs.File.Dir})
		case "stdout":
			err = sDrv.Configure(stdout.Config{Pretty: cfg.SinkConfigs.Stdout.Pretty})
		case "kafka":
			kc, kerr := config.LoadKafkaConfig(cfg.SinkConfigs.Kafka)
			if kerr != nil {
				return fmt.Errorf("sink kafka: %w", kerr)
			}
			kc.RunID = opts.RunID
			err = sDrv.Configure(kc)
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return err
		}

		if ackAware, ok := sDrv.(sink.AckAware); ok {
			ackAware.BindAck(r.Ack)
		}
		r.AddSink(sDrv)
	}
	return nil
}
