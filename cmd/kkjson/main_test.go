package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kkjson/internal/table"
	"kkjson/sink/file"
	"kkjson/source"
)

func TestRootCmd_ConvertsWithFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "kk.csv")
	require.NoError(t, os.WriteFile(in, []byte("NO KK,NAMA\n3201,Andi\n"), 0o644))
	out := filepath.Join(dir, "out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--input", in, "--output", out, "--log-level", "error"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(filepath.Join(out, "3201.json"))
	require.NoError(t, err)
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestRootCmd_KeyMissingWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "kk.csv")
	require.NoError(t, os.WriteFile(in, []byte("NIK,NAMA\n1,Andi\n"), 0o644))
	out := filepath.Join(dir, "out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--input", in, "--output", out, "--log-level", "error"})
	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, table.ErrKeyMissing)
	require.Equal(t, 0, report(err))

	_, err = os.Stat(out)
	require.True(t, os.IsNotExist(err))
}

func TestReport_ExitStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x.csv: %w", source.ErrInputUnreadable), 1},
		{fmt.Errorf("x.csv: %w", source.ErrEncoding), 1},
		{fmt.Errorf("%w: \"NO KK\"", table.ErrKeyMissing), 0},
		{fmt.Errorf("%w: 12_34.json", file.ErrNameCollision), 1},
		{errors.New("boom"), 1},
	}
	for _, c := range cases {
		require.Equal(t, c.want, report(c.err), c.err.Error())
	}
}
