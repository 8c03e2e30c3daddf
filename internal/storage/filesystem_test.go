package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFilesystemStorage_SaveOpenDelete(t *testing.T) {
	s, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "attachments/2026/10/19/7/abcd1234/logo.png"
	require.NoError(t, s.Save(ctx, key, strings.NewReader("png-bytes"), 9, "image/png"))

	f, err := s.Open(ctx, key)
	require.NoError(t, err)
	size, err := f.Size()
	require.NoError(t, err)
	require.Equal(t, int64(9), size)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(b))
	require.NoError(t, f.Close())

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	// deleting twice is not an error
	require.NoError(t, s.Delete(ctx, key))
}

func TestFilesystemStorage_RejectsTraversal(t *testing.T) {
	s, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for _, key := range []string{"../../etc/passwd", "attachments/../../x", "", "/"} {
		require.Error(t, s.Save(ctx, key, strings.NewReader("x"), 1, "text/plain"), key)
	}
}

func TestFilesystemStorage_DotsInsideFilename(t *testing.T) {
	s, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"logo..v2.png", "report...final.pdf", "..hidden"} {
		key := RevisionKey(3, name, time.Now())
		require.NoError(t, s.Save(ctx, key, strings.NewReader("data"), 4, "text/plain"), key)
		f, err := s.Open(ctx, key)
		require.NoError(t, err, key)
		require.NoError(t, f.Close())
	}
}

func TestRevisionKey(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	key := RevisionKey(42, `C:\Users\me\diagram.svg`, now)
	require.True(t, strings.HasPrefix(key, "attachments/2026/10/19/42/"), key)
	require.True(t, strings.HasSuffix(key, "/diagram.svg"), key)
	require.Len(t, strings.Split(key, "/"), 7)

	require.NotEqual(t, key, RevisionKey(42, "diagram.svg", now))
	require.True(t, strings.HasSuffix(RevisionKey(1, "", now), "/file"))
	require.True(t, strings.HasSuffix(RevisionKey(1, "..", now), "/file"))
}
