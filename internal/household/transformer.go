// Package household turns a normalized registry table into one document
// per household ("kartu keluarga"), each holding the shared address and
// the ordered list of members.
package household

import (
	"context"
	"strings"

	"kkjson/internal/document"
	"kkjson/internal/logging"
	"kkjson/internal/table"
)

const (
	DefaultGroupingKey = "NO KK"
	DefaultNameField   = "namaLengkap"
)

// Observer receives per-run counts. All methods must be cheap.
type Observer interface {
	RowsRead(n int)
	RowsSkipped(n int)
	Household()
	Fallback(field string)
}

type Config struct {
	// GroupingKey is the column whose value identifies a household.
	GroupingKey string
	// NameField is the member key for the NAMA column ("namaLengkap" or "nama").
	NameField string
	// NAValues are blanked by fill-defaults; nil selects table.DefaultNAValues.
	NAValues []string
}

// Summary totals one Transform call.
type Summary struct {
	Rows       int
	Households int
	Skipped    int
}

type Transformer struct {
	cfg    Config
	obs    Observer
	member []Mapping
}

func New(cfg Config, obs Observer) *Transformer {
	if strings.TrimSpace(cfg.GroupingKey) == "" {
		cfg.GroupingKey = DefaultGroupingKey
	}
	cfg.GroupingKey = table.NormalizeHeader(cfg.GroupingKey)
	if cfg.NameField == "" {
		cfg.NameField = DefaultNameField
	}
	if cfg.NAValues == nil {
		cfg.NAValues = table.DefaultNAValues
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Transformer{
		cfg:    cfg,
		obs:    obs,
		member: renameTarget(MemberFields, DefaultNameField, cfg.NameField),
	}
}

// Prepare normalizes headers, checks for the grouping column and blanks
// missing cells. It fails with table.ErrKeyMissing.
func (t *Transformer) Prepare(tbl *table.Table) error {
	before := append([]string(nil), tbl.Columns...)
	dups := tbl.NormalizeHeaders()
	logging.L().Info("columns normalized", "before", before, "after", tbl.Columns)
	if len(dups) > 0 {
		logging.L().Warn("duplicate columns after normalization, last one wins", "columns", dups)
	}
	if err := tbl.ValidateKey(t.cfg.GroupingKey); err != nil {
		return err
	}
	tbl.FillDefaults(t.cfg.NAValues)
	return nil
}

// Transform prepares tbl and calls emit once per household in
// first-appearance order. Each document is built just before it is
// emitted. An emit error or context cancellation stops the run.
func (t *Transformer) Transform(ctx context.Context, tbl *table.Table, emit func(document.Document) error) (Summary, error) {
	var sum Summary
	if err := t.Prepare(tbl); err != nil {
		return sum, err
	}
	sum.Rows = len(tbl.Rows)
	t.obs.RowsRead(sum.Rows)

	groups, skipped := tbl.GroupBy(t.cfg.GroupingKey)
	sum.Skipped = skipped
	if skipped > 0 {
		t.obs.RowsSkipped(skipped)
		logging.L().Info("rows without household number skipped", "rows", skipped)
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		doc := t.BuildHousehold(g.Key, g.Rows)
		if err := emit(doc); err != nil {
			return sum, err
		}
		sum.Households++
		t.obs.Household()
	}
	return sum, nil
}

// BuildHousehold assembles the document for one household. Address and
// upload metadata come from rows[0]; rows must not be empty.
func (t *Transformer) BuildHousehold(key string, rows []table.Row) document.Document {
	first := rows[0]

	addr := make(document.Object, 0, len(AddressFields))
	Apply(&addr, AddressFields, first, t.obs)

	members := make([]document.Object, 0, len(rows))
	for _, r := range rows {
		members = append(members, t.BuildMember(r))
	}

	body := document.Object{
		{Key: "kk", Value: key},
		{Key: "alamatLengkap", Value: addr},
		{Key: "anggota", Value: members},
	}
	Apply(&body, MetadataFields, first, t.obs)
	return document.Document{Key: key, Body: body}
}

// BuildMember maps one row to a member document.
func (t *Transformer) BuildMember(r table.Row) document.Object {
	m := make(document.Object, 0, len(t.member))
	Apply(&m, t.member, r, t.obs)
	return m
}

type nopObserver struct{}

func (nopObserver) RowsRead(int)    {}
func (nopObserver) RowsSkipped(int) {}
func (nopObserver) Household()      {}
func (nopObserver) Fallback(string) {}
