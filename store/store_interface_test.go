package store

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tests that anything implementing SketchStore should pass.
func storeImplementationBaseTests(t *testing.T, s SketchStore, prefix string) {
	ctx := context.Background()
	large := make([]byte, 3*1024*1024+17)
	_, err := rand.Read(large)
	require.NoError(t, err)

	tests := []struct {
		test  string
		input []byte
	}{
		{"EmptySketch", []byte("")},
		{"SmallSketch", []byte("DUPS\x01\x01\x08\x00\x02\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00\x07")},
		{"LargeSketch", large},
	}
	for _, tc := range tests {
		t.Run(tc.test, func(t *testing.T) {
			key := prefix + "/" + tc.test + ".sketch"
			require.NoError(t, s.Put(ctx, key, bytes.NewReader(tc.input), int64(len(tc.input))))

			rc, err := s.Open(ctx, key)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			require.Equal(t, len(tc.input), len(got))
			require.True(t, bytes.Equal(tc.input, got))
		})
	}

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "/overwrite.sketch"
		require.NoError(t, s.Put(ctx, key, bytes.NewReader([]byte("first")), 5))
		require.NoError(t, s.Put(ctx, key, bytes.NewReader([]byte("second")), 6))
		rc, err := s.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "second", string(got))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Open(ctx, prefix+"/missing.sketch")
		require.Error(t, err)
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	})
}
