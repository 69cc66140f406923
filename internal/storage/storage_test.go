package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_UploadAndGet(t *testing.T) {
	store := NewMemoryStorage("http://localhost:9000/resumeforge")

	url, err := store.Upload(context.Background(), Object{
		Key:         "prints/user-1/resume-1.pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/resumeforge/prints/user-1/resume-1.pdf", url)

	obj, ok := store.Get("prints/user-1/resume-1.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestMemoryStorage_Delete(t *testing.T) {
	store := NewMemoryStorage("http://localhost:9000/resumeforge")

	_, err := store.Upload(context.Background(), Object{Key: "k", Body: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "k"))
	_, ok := store.Get("k")
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(context.Background(), "missing"))
}
