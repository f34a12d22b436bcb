package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header; mimetype only needs the magic bytes.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestSaveDetectsImageType(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	name, err := fs.Save(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"), "got %q", name)

	data, err := os.ReadFile(filepath.Join(fs.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveRejectsNonImage(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	_, err = fs.Save(strings.NewReader("#!/bin/sh\necho pwned\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not be written")
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 16)
	require.NoError(t, err)

	_, err = fs.Save(bytes.NewReader(bytes.Repeat(pngHeader, 10)))
	assert.Error(t, err)
}

func TestRemoveRejectsPathTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	assert.Error(t, fs.Remove("../outside.png"))
	assert.NoError(t, fs.Remove("missing.png"))
}
