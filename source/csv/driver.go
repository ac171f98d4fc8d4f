// Package csv reads delimited registry exports. Input is decoded as UTF-8
// and, failing that, as Latin-1; every cell is kept as a string so leading
// zeros in identifiers survive.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"kkjson/internal/logging"
	"kkjson/internal/table"
	"kkjson/source"
)

// bom is the UTF-8 byte order mark, removed from the raw bytes before
// decoding so a Latin-1 fallback cannot turn it into "ï»¿".
const bom = "\ufeff"

// Encoding names accepted in source.Config.Encoding.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin-1"
	EncodingWindows1252 = "windows-1252"
)

var charmaps = map[string]encoding.Encoding{
	EncodingLatin1:      charmap.ISO8859_1,
	"latin1":            charmap.ISO8859_1,
	"iso-8859-1":        charmap.ISO8859_1,
	EncodingWindows1252: charmap.Windows1252,
	"cp1252":            charmap.Windows1252,
}

type Driver struct {
	cfg   source.Config
	comma rune
}

func (d *Driver) Configure(c source.Config) error {
	c.Encoding = strings.ToLower(strings.TrimSpace(c.Encoding))
	switch c.Encoding {
	case "":
		c.Encoding = EncodingAuto
	case EncodingAuto, EncodingUTF8, "utf8":
	default:
		if _, ok := charmaps[c.Encoding]; !ok {
			return fmt.Errorf("csv-source: unknown encoding %q", c.Encoding)
		}
	}

	d.comma = ','
	if c.Delimiter != "" {
		if c.Delimiter == `\t` {
			c.Delimiter = "\t"
		}
		r, n := utf8.DecodeRuneInString(c.Delimiter)
		if n != len(c.Delimiter) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return fmt.Errorf("csv-source: invalid delimiter %q", c.Delimiter)
		}
		d.comma = r
	}
	d.cfg = c
	return nil
}

func (d *Driver) Load(_ context.Context) (*table.Table, error) {
	raw, err := os.ReadFile(d.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrInputUnreadable, d.cfg.Path, err)
	}
	raw = bytes.TrimPrefix(raw, []byte(bom))
	text, used, err := Decode(raw, d.cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.cfg.Path, err)
	}
	logging.L().Info("csv source decoded", "path", d.cfg.Path, "encoding", used, "bytes", len(raw))

	r := stdcsv.NewReader(bytes.NewReader(text))
	r.Comma = d.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv-source: parse %s: %w", d.cfg.Path, err)
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}
	return table.New(records[0], records[1:]), nil
}

// Decode converts raw to UTF-8 according to name and reports the encoding
// actually used. "auto" accepts valid UTF-8 as is and otherwise decodes
// as Latin-1.
func Decode(raw []byte, name string) ([]byte, string, error) {
	switch name {
	case "", EncodingAuto:
		if utf8.Valid(raw) {
			return raw, EncodingUTF8, nil
		}
		logging.L().Warn("input is not valid UTF-8, retrying as latin-1")
		name = EncodingLatin1
	case EncodingUTF8, "utf8":
		if !utf8.Valid(raw) {
			return nil, "", fmt.Errorf("%w: not valid %s", source.ErrEncoding, EncodingUTF8)
		}
		return raw, EncodingUTF8, nil
	}

	enc, ok := charmaps[name]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", source.ErrEncoding, name)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", source.ErrEncoding, name, err)
	}
	return out, name, nil
}

func init() {
	source.Register("csv", func() source.Adapter { return &Driver{} })
}
