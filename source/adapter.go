// Package source loads a registry export into a table.Table. Drivers
// register themselves by kind from their init functions.
package source

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"kkjson/internal/table"
)

var (
	// ErrInputUnreadable reports a source that does not exist or cannot be opened.
	ErrInputUnreadable = errors.New("input unreadable")
	// ErrEncoding reports bytes no permitted encoding can decode.
	ErrEncoding = errors.New("input encoding not supported")
)

// Config is shared by every driver; each driver ignores what it does not use.
type Config struct {
	Path string
	// Encoding is auto, utf-8, latin-1 or windows-1252 (delimited text only).
	Encoding string
	// Delimiter is a single character, "," when empty (delimited text only).
	Delimiter string
	// Sheet names the worksheet to read, the first one when empty (workbooks only).
	Sheet string
}

type Adapter interface {
	Configure(Config) error
	Load(context.Context) (*table.Table, error)
}

// KindFor picks a driver kind from the file extension: ".xlsx" and
// ".xlsm" select "xlsx", anything else "csv".
func KindFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "csv"
	}
}
