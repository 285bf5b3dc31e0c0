// Package testutil builds multipart bodies and sqlite databases for tests.
package testutil

import (
	"bytes"
	"mime"
	"mime/multipart"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vitrina/internal/config"
	"vitrina/internal/db"
)

// File is one file part of a multipart form.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Multipart encodes fields and files, in order, as a multipart/form-data body.
func Multipart(t *testing.T, fields map[string][]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

// FileHeaders turns files into parsed headers as a handler would see them.
func FileHeaders(t *testing.T, files ...File) []*multipart.FileHeader {
	t.Helper()
	body, contentType := Multipart(t, nil, files...)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	var out []*multipart.FileHeader
	seen := map[string]int{}
	for _, f := range files {
		out = append(out, form.File[f.Field][seen[f.Field]])
		seen[f.Field]++
	}
	return out
}

// SQLite opens a migrated sqlite database inside t.TempDir().
func SQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.Database{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
