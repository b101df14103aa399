package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "/uploads/")
	ctx := context.Background()

	obj, err := s.Put(ctx, "projects/p1/attachments/1_a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/projects/p1/attachments/1_a.txt", obj.URL)
	assert.EqualValues(t, 5, obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, "projects", "p1", "attachments", "1_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, obj.Path))
	assert.ErrorIs(t, s.Delete(ctx, obj.Path), ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/uploads")

	for _, p := range []string{"", "/etc/passwd", "../escape", `a\b`, "projects/../../x"} {
		_, err := s.Put(context.Background(), p, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestLocalStoreAllowsDotsInNames(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/uploads")

	for _, p := range []string{"projects/p1/attachments/1_report..v2.pdf", "projects/p1/attachments/2_..pdf", "projects/p1/a/3_x..."} {
		obj, err := s.Put(context.Background(), p, strings.NewReader("x"), "application/pdf")
		require.NoError(t, err, p)
		assert.Equal(t, p, obj.Path)
	}
}
