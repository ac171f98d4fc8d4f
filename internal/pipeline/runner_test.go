package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kkjson/internal/config"
	"kkjson/internal/document"
	"kkjson/internal/household"
	"kkjson/internal/table"
	"kkjson/sink"
	"kkjson/source"
)

type fakeSource struct {
	tbl *table.Table
	err error
}

func (f *fakeSource) Configure(source.Config) error { return nil }
func (f *fakeSource) Load(context.Context) (*table.Table, error) {
	return f.tbl, f.err
}

type captureSink struct {
	pushed []document.Document
	ackFn  sink.EmitFn
	closed int
	fail   error
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Push(d document.Document) error {
	if c.fail != nil {
		return c.fail
	}
	c.pushed = append(c.pushed, d)
	if c.ackFn != nil {
		c.ackFn("capture", d.Key)
	}
	return nil
}
func (c *captureSink) Close() error           { c.closed++; return nil }
func (c *captureSink) BindAck(fn sink.EmitFn) { c.ackFn = fn }

func makeTable() *table.Table {
	return table.New([]string{"NO KK", "NAMA"}, [][]string{{"1", "A"}, {"2", "B"}, {"1", "C"}, {"", "D"}})
}

func TestRunner_PushesEveryHouseholdAndAcks(t *testing.T) {
	r := NewRunner()
	r.SetSource(&fakeSource{tbl: makeTable()})
	r.SetTransformer(household.New(household.Config{}, nil))
	cs := &captureSink{}
	cs.BindAck(r.Ack)
	r.AddSink(cs)

	var acked []string
	r.SubscribeAck(func(name, key string) { acked = append(acked, key) })

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, household.Summary{Rows: 4, Households: 2, Skipped: 1}, sum)
	require.Len(t, cs.pushed, 2)
	require.Equal(t, "1", cs.pushed[0].Key)
	require.Equal(t, "2", cs.pushed[1].Key)
	require.Equal(t, []string{"1", "2"}, acked)
	require.Equal(t, 1, cs.closed, "sink closed once")
}

func TestRunner_KeyMissingWritesNothing(t *testing.T) {
	r := NewRunner()
	r.SetSource(&fakeSource{tbl: table.New([]string{"NIK"}, [][]string{{"1"}})})
	r.SetTransformer(household.New(household.Config{}, nil))
	cs := &captureSink{}
	r.AddSink(cs)

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, table.ErrKeyMissing)
	require.Empty(t, cs.pushed)
	require.Equal(t, 1, cs.closed, "sink closed after failure")
}

func TestRunner_SourceAndSinkErrors(t *testing.T) {
	r := NewRunner()
	r.SetSource(&fakeSource{err: source.ErrInputUnreadable})
	r.SetTransformer(household.New(household.Config{}, nil))
	r.AddSink(&captureSink{})
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, source.ErrInputUnreadable)

	boom := errors.New("disk full")
	r = NewRunner()
	r.SetSource(&fakeSource{tbl: makeTable()})
	r.SetTransformer(household.New(household.Config{}, nil))
	r.AddSink(&captureSink{fail: boom})
	_, err = r.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunner_RequiresParts(t *testing.T) {
	_, err := NewRunner().Run(context.Background())
	require.Error(t, err, "no source configured")
}

func TestCompile_EndToEndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data_keluarga.csv")
	csv := "No KK ,NIK,Nama,Alamat,Tanggal Lahir\n" +
		"3201,0001,Andi,Jl. Melati,05/03/1990\n" +
		",0009,Tanpa KK,Jl. Entah,\n" +
		"3202,0002,Budi,Jl. Mawar,abc\n" +
		"3201,0003,Citra,Jl. Lain,\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0o644))

	cfg := config.Default()
	cfg.Source.Path = in
	cfg.SinkConfigs.File.Dir = filepath.Join(dir, "hasil_json")

	run := func() map[string]string {
		r, err := Compile(cfg, Options{})
		require.NoError(t, err)
		_, err = r.Run(context.Background())
		require.NoError(t, err)
		entries, err := os.ReadDir(cfg.SinkConfigs.File.Dir)
		require.NoError(t, err)
		out := map[string]string{}
		for _, e := range entries {
			b, err := os.ReadFile(filepath.Join(cfg.SinkConfigs.File.Dir, e.Name()))
			require.NoError(t, err)
			out[e.Name()] = string(b)
		}
		return out
	}

	first := run()
	require.Len(t, first, 2, "3201.json and 3202.json")
	want := `{
  "kk": "3201",
  "alamatLengkap": {
    "alamat": "Jl. Melati",
    "rt": "",
    "rw": "",
    "kelurahan": "",
    "kecamatan": "",
    "kabupaten": "",
    "provinsi": "",
    "kodePos": ""
  },
  "anggota": [
    {
      "nik": "0001",
      "namaLengkap": "Andi",
      "jenisKelamin": "",
      "tempatLahir": "",
      "tanggalLahir": "1990-03-05",
      "agama": "",
      "pendidikan": "",
      "jenisPekerjaan": "",
      "statusPernikahan": "",
      "statusHubunganKeluarga": "",
      "kewarganegaraan": "",
      "wallet": null
    },
    {
      "nik": "0003",
      "namaLengkap": "Citra",
      "jenisKelamin": "",
      "tempatLahir": "",
      "tanggalLahir": null,
      "agama": "",
      "pendidikan": "",
      "jenisPekerjaan": "",
      "statusPernikahan": "",
      "statusHubunganKeluarga": "",
      "kewarganegaraan": "",
      "wallet": null
    }
  ]
}
`
	require.Equal(t, want, first["3201.json"])
	require.Equal(t, first, run(), "output changed between runs")
}

func TestCompile_UnknownSinkAndSource(t *testing.T) {
	cfg := config.Default()
	cfg.Sinks = []string{"mongodb"}
	_, err := Compile(cfg, Options{})
	require.Error(t, err, "unknown sink")

	cfg = config.Default()
	cfg.Source.Kind = "parquet"
	_, err = Compile(cfg, Options{})
	require.Error(t, err, "unknown source kind")
}
