package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage(time.Minute)

	require.NoError(t, s.Upload(ctx, "orgs/a/file.pdf", []byte("content"), "application/pdf"))

	exists, err := s.Exists(ctx, "orgs/a/file.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	url, expiresAt, err := s.DownloadURL(ctx, "orgs/a/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://orgs/a/file.pdf", url)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 2*time.Second)

	require.NoError(t, s.Delete(ctx, "orgs/a/file.pdf"))
	exists, err = s.Exists(ctx, "orgs/a/file.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryObjectStorage_UploadCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage(0)

	data := []byte("original")
	require.NoError(t, s.Upload(ctx, "key", data, "text/plain"))
	data[0] = 'X'

	stored, ok := s.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), stored)
}

func TestMemoryObjectStorage_MissingObject(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage(time.Minute)

	_, _, err := s.DownloadURL(ctx, "missing")
	assert.Error(t, err)

	assert.NoError(t, s.Delete(ctx, "missing"))

	assert.Error(t, s.Upload(ctx, "", []byte("x"), "text/plain"))
}
