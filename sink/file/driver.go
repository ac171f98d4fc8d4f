// Package file writes each household document to <dir>/<kk>.json.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"kkjson/internal/document"
	"kkjson/internal/logging"
	"kkjson/sink"
)

const DefaultDir = "hasil_json"

// ErrNameCollision reports two households whose identifiers map to the
// same file name.
var ErrNameCollision = errors.New("file-sink: file name already used by another household")

type Config struct {
	Dir string `yaml:"dir"`
}

type driver struct {
	cfg    Config
	ack    sink.EmitFn
	ready  bool
	// owners maps each file name written this run to its household.
	owners map[string]string
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("file-sink: expected Config, got %T", raw)
	}
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	d.cfg = c
	return nil
}

// Push writes doc, replacing any file of the same name left by an earlier
// run. The directory is created on the first write. A second household
// mapping to a name already written in this run fails with
// ErrNameCollision instead of overwriting the first.
func (d *driver) Push(doc document.Document) error {
	name := FileName(doc.Key)
	if owner, ok := d.owners[name]; ok && owner != doc.Key {
		return fmt.Errorf("%w: %s (%q, %q)", ErrNameCollision, name, owner, doc.Key)
	}
	if !d.ready {
		if err := ensureDir(d.cfg.Dir); err != nil {
			return err
		}
		d.ready = true
	}
	data, err := document.Marshal(doc.Body)
	if err != nil {
		return fmt.Errorf("file-sink: encode %s: %w", doc.Key, err)
	}
	path := filepath.Join(d.cfg.Dir, name)
	if err := writeReplace(path, data); err != nil {
		return fmt.Errorf("file-sink: %w", err)
	}
	if d.owners == nil {
		d.owners = map[string]string{}
	}
	d.owners[name] = doc.Key
	if d.ack != nil {
		d.ack("file", doc.Key)
	}
	return nil
}

func (d *driver) Close() error { return nil }

/* ────────── sink.AckAware ────────── */
func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

// FileName returns the file name for a household identifier. Path
// separators are replaced so the file always lands inside the directory.
func FileName(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, key)
	if safe == "." || safe == ".." {
		safe = strings.Repeat("_", len(safe))
	}
	return safe + ".json"
}

func ensureDir(dir string) error {
	_, err := os.Stat(dir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file-sink: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file-sink: %w", err)
	}
	logging.L().Info("output folder created", "dir", dir)
	return nil
}

// writeReplace writes data to a temporary file next to path and renames
// it into place.
func writeReplace(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kk-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("file", func() sink.Adapter { return &driver{} })
}
