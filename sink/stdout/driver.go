// Package stdout writes household documents to standard output, one JSON
// document per line unless Pretty is set. The line form suits piping into
// document-store import tools.
package stdout

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"kkjson/internal/document"
	"kkjson/sink"
)

/* ────────── public YAML config ────────── */
type Config struct {
	Pretty bool      `yaml:"pretty"`
	Writer io.Writer `yaml:"-"` // os.Stdout when nil
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	ack sink.EmitFn

	mu sync.Mutex // guards w
	w  *bufio.Writer
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	d.cfg = c
	d.w = bufio.NewWriter(c.Writer)
	return nil
}

func (d *driver) Push(doc document.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.cfg.Pretty {
		err = document.EncodePretty(d.w, doc.Body)
	} else {
		err = document.EncodeCompact(d.w, doc.Body)
	}
	if err != nil {
		return fmt.Errorf("stdout-sink: %s: %w", doc.Key, err)
	}
	if err := d.w.Flush(); err != nil {
		return fmt.Errorf("stdout-sink: %w", err)
	}
	if d.ack != nil {
		d.ack("stdout", doc.Key)
	}
	return nil
}

func (d *driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.w == nil {
		return nil
	}
	return d.w.Flush()
}

/* ────────── sink.AckAware ────────── */
func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
