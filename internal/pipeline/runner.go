package pipeline

import (
	"context"
	"errors"
	"sync"

	"kkjson/internal/document"
	"kkjson/internal/household"
	"kkjson/internal/logging"
	"kkjson/sink"
	"kkjson/source"
)

// Runner executes one conversion: load the source, build every household
// and hand each document to all sinks before building the next.
type Runner struct {
	source      source.Adapter
	transformer *household.Transformer
	sinks       []sink.Adapter

	mu   sync.Mutex
	subs []sink.EmitFn
}

func NewRunner() *Runner { return &Runner{} }

func (r *Runner) AddSink(s sink.Adapter)                  { r.sinks = append(r.sinks, s) }
func (r *Runner) SetSource(s source.Adapter)              { r.source = s }
func (r *Runner) SetTransformer(t *household.Transformer) { r.transformer = t }

func (r *Runner) SubscribeAck(fn sink.EmitFn) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

// Ack fans a sink's write confirmation out to every subscriber.
func (r *Runner) Ack(name, key string) {
	r.mu.Lock()
	handlers := append([]sink.EmitFn{}, r.subs...)
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(name, key)
	}
}

/*──────── document routing ───────*/
func (r *Runner) pushDocument(doc document.Document) error {
	for _, s := range r.sinks {
		if err := s.Push(doc); err != nil {
			return err
		}
	}
	return nil
}

// Run performs the conversion and closes the sinks. Documents already
// written stay in place when a later step fails.
func (r *Runner) Run(ctx context.Context) (household.Summary, error) {
	if r.source == nil {
		return household.Summary{}, errors.New("runner: no source configured")
	}
	if r.transformer == nil {
		return household.Summary{}, errors.New("runner: no transformer configured")
	}
	if len(r.sinks) == 0 {
		return household.Summary{}, errors.New("runner: no sinks configured")
	}

	tbl, err := r.source.Load(ctx)
	if err != nil {
		return household.Summary{}, errors.Join(err, r.Close())
	}
	logging.L().Info("source loaded", "columns", len(tbl.Columns), "rows", len(tbl.Rows))

	sum, err := r.transformer.Transform(ctx, tbl, r.pushDocument)
	return sum, errors.Join(err, r.Close())
}

// Close closes every sink once.
func (r *Runner) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.sinks = nil
	return errors.Join(errs...)
}
