package stdout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"kkjson/internal/document"
	"kkjson/sink"
)

func TestPush_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	s, err := sink.NewAdapter("stdout")
	require.NoError(t, err)
	require.NoError(t, s.Configure(Config{Writer: &buf}))
	acks := 0
	s.(sink.AckAware).BindAck(func(string, string) { acks++ })

	for _, kk := range []string{"1", "2"} {
		doc := document.Document{Key: kk, Body: document.Object{{Key: "kk", Value: kk}, {Key: "alamat", Value: "Gg. Haji & Sons"}}}
		require.NoError(t, s.Push(doc))
	}
	require.NoError(t, s.Close())

	want := "{\"kk\":\"1\",\"alamat\":\"Gg. Haji & Sons\"}\n{\"kk\":\"2\",\"alamat\":\"Gg. Haji & Sons\"}\n"
	require.Equal(t, want, buf.String())
	require.Equal(t, 2, acks)
}

func TestPush_Pretty(t *testing.T) {
	var buf bytes.Buffer
	d := &driver{}
	require.NoError(t, d.Configure(Config{Writer: &buf, Pretty: true}))
	require.NoError(t, d.Push(document.Document{Key: "1", Body: document.Object{{Key: "kk", Value: "1"}}}))
	require.Equal(t, "{\n  \"kk\": \"1\"\n}\n", buf.String())
}
