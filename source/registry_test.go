package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kkjson/internal/table"
)

type fakeAdapter struct{}

func (fakeAdapter) Configure(Config) error { return nil }
func (fakeAdapter) Load(context.Context) (*table.Table, error) {
	return table.New(nil, nil), nil
}

func TestRegistry(t *testing.T) {
	Register("fake", func() Adapter { return fakeAdapter{} })
	_, err := NewAdapter("fake")
	require.NoError(t, err)
	_, err = NewAdapter("parquet")
	require.Error(t, err, "unknown kind")
}

func TestKindFor(t *testing.T) {
	cases := map[string]string{
		"data_keluarga.csv":  "csv",
		"export.TSV":         "csv",
		"data/keluarga.xlsx": "xlsx",
		"macro.XLSM":         "xlsx",
		"noext":              "csv",
	}
	for in, want := range cases {
		require.Equal(t, want, KindFor(in), in)
	}
}
