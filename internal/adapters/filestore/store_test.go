package filestore

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDownload_RoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	p, url, err := s.Upload(ctx, []byte("%PDF-1.7"), "application-documents", "app-1/receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application-documents/app-1/receipt.pdf", p)
	assert.Equal(t, "mem://documents/application-documents/app-1/receipt.pdf", url)

	data, err := s.Download(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
}

func TestUpload_RejectsTraversal(t *testing.T) {
	s := NewMemory()
	_, _, err := s.Upload(context.Background(), []byte("x"), "bucket", "../../etc/passwd")
	assert.Error(t, err)
}

func TestDownload_Missing(t *testing.T) {
	_, err := NewMemory().Download(context.Background(), "bucket/none.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUpload_BasePathFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := New(afero.NewBasePathFs(mem, "/srv/uploads"), "https://files.example/")

	_, url, err := s.Upload(context.Background(), []byte("x"), "b", "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/b/f.txt", url)

	ok, err := afero.Exists(mem, "/srv/uploads/b/f.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpload_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewMemory().Upload(ctx, []byte("x"), "b", "f.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
