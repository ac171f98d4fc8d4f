// Package xlsx reads registry exports saved as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"kkjson/internal/logging"
	"kkjson/internal/table"
	"kkjson/source"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

type Driver struct {
	cfg source.Config
}

func (d *Driver) Configure(c source.Config) error {
	d.cfg = c
	return nil
}

// Load reads the configured sheet (the first sheet when unset). Cells are
// taken as displayed, except date cells, which are rewritten from their
// serial value as ISO dates. Rows with no content are dropped.
func (d *Driver) Load(_ context.Context) (*table.Table, error) {
	if _, err := os.Stat(d.cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrInputUnreadable, d.cfg.Path, err)
	}
	f, err := excelize.OpenFile(d.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrInputUnreadable, d.cfg.Path, err)
	}
	defer f.Close()

	sheet := d.cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx-source: sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx-source: sheet %q: %w", sheet, err)
	}
	n := newDates(f, sheet).rewrite(rows, raw)
	logging.L().Info("xlsx source read", "path", d.cfg.Path, "sheet", sheet, "rows", len(rows), "date_cells", n)

	rows = dropBlank(rows)
	if len(rows) == 0 {
		return table.New(nil, nil), nil
	}
	return table.New(rows[0], rows[1:]), nil
}

// dates resolves a cell's number format to an output layout. Excel
// displays built-in date formats month-first (format 14 is mm-dd-yy), so
// date cells are rebuilt from the serial instead of the displayed text.
type dates struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	layouts  map[int]string
}

func newDates(f *excelize.File, sheet string) *dates {
	d := &dates{f: f, sheet: sheet, layouts: map[int]string{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// rewrite replaces date cells in shown with their ISO form and returns the
// number of cells changed. raw holds the same sheet read unformatted.
func (d *dates) rewrite(shown, raw [][]string) int {
	n := 0
	for i, row := range shown {
		if i >= len(raw) {
			break
		}
		for j := range row {
			if j >= len(raw[i]) || raw[i][j] == row[j] {
				continue
			}
			if v, ok := d.convert(j+1, i+1, raw[i][j]); ok {
				row[j] = v
				n++
			}
		}
	}
	return n
}

func (d *dates) convert(col, row int, raw string) (string, bool) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	styleID, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil {
		return "", false
	}
	layout, ok := d.layouts[styleID]
	if !ok {
		layout = ""
		if style, err := d.f.GetStyle(styleID); err == nil {
			layout = layoutFor(style)
		}
		d.layouts[styleID] = layout
	}
	if layout == "" {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	return t.Round(time.Second).Format(layout), true
}

// layoutFor returns the output layout for date number formats and "" for
// everything else, including time-only formats.
func layoutFor(s *excelize.Style) string {
	if s.CustomNumFmt != nil {
		return customLayout(*s.CustomNumFmt)
	}
	switch {
	case s.NumFmt >= 14 && s.NumFmt <= 17:
		return dateLayout
	case s.NumFmt == 22:
		return dateTimeLayout
	}
	return ""
}

// customLayout classifies a format code by its day and year tokens. "m"
// alone is ambiguous between month and minute and decides nothing.
func customLayout(code string) string {
	var b strings.Builder
	quoted, bracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	tokens := b.String()
	if !strings.ContainsAny(tokens, "dy") {
		return ""
	}
	if strings.ContainsAny(tokens, "hs") {
		return dateTimeLayout
	}
	return dateLayout
}

func dropBlank(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		if strings.TrimSpace(strings.Join(r, "")) != "" {
			out = append(out, r)
		}
	}
	return out
}

func init() {
	source.Register("xlsx", func() source.Adapter { return &Driver{} })
}
