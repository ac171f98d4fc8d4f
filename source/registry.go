package source

import "fmt"

// Factory builds an Adapter.
type Factory func() Adapter

var registry = map[string]Factory{}

// Register is called from each driver's init().
func Register(kind string, f Factory) {
	registry[kind] = f
}

// NewAdapter returns a driver by kind ("csv", "xlsx").
func NewAdapter(kind string) (Adapter, error) {
	if f, ok := registry[kind]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("source: unsupported kind %q", kind)
}
