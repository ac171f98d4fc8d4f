package sink

import (
	"fmt"

	"kkjson/internal/document"
)

// EmitFn is what a sink calls once a household document has been durably
// written; name identifies the sink.
type EmitFn func(name, key string)

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error          // driver-specific config struct
	Push(document.Document) error // write one household
	Close() error                 // idempotent
}

// AckAware is optional; sinks that report completed writes implement it.
// The compiler wires the callback if present.
type AckAware interface {
	BindAck(EmitFn)
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
