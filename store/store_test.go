package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestStoreFilesystem(t *testing.T) {
	storeImplementationBaseTests(t, NewLocalStore(t.TempDir()), "shards")
}

func TestStoreFilesystemPlainPaths(t *testing.T) {
	dir := t.TempDir()
	storeImplementationBaseTests(t, NewLocalStore(""), dir)
}

func TestStoreFilesystemFailedPutLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	err := s.Put(ctx, "out.sketch", io.MultiReader(strings.NewReader("DUPS"), iotest.ErrReader(errors.New("boom"))), 100)
	require.Error(t, err)

	err = s.Put(ctx, "short.sketch", strings.NewReader("abc"), 10)
	require.ErrorContains(t, err, "short write")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no temporary or partial files should remain")
}

func TestStoreFilesystemAccessError(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "afile"), []byte("x"), 0644))
	_, err := s.Open(context.Background(), "afile/child")
	require.Error(t, err)
	var ae *AccessError
	require.True(t, errors.As(err, &ae), "expected AccessError, got %v", err)
}

func TestStoreMemory(t *testing.T) {
	s := NewMemoryStore()
	storeImplementationBaseTests(t, s, "mem")
	require.Contains(t, s.Keys(), "mem/overwrite.sketch")
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		test      string
		raw       string
		scheme    string
		container string
		key       string
		err       string
	}{
		{"stdio", "-", SchemeStdio, "", "", ""},
		{"relative path", "out/day1.sketch", SchemeFile, "", "out/day1.sketch", ""},
		{"absolute path", "/tmp/a.sketch", SchemeFile, "", "/tmp/a.sketch", ""},
		{"file scheme", "file:///tmp/a.sketch", SchemeFile, "", "/tmp/a.sketch", ""},
		{"s3", "s3://sketches/2024/shard-1.sketch", SchemeS3, "sketches", "2024/shard-1.sketch", ""},
		{"s3 upper", "S3://sketches/a", SchemeS3, "sketches", "a", ""},
		{"azure", "azblob://container/shard-2.sketch", SchemeAzure, "container", "shard-2.sketch", ""},
		{"redis", "redis://dupsketch:shard:3", SchemeRedis, "", "dupsketch:shard:3", ""},
		{"redis with slash", "redis://shards/3", SchemeRedis, "", "shards/3", ""},
		{"empty", "", "", "", "", "empty"},
		{"s3 no bucket", "s3:///key", "", "", "", "missing bucket"},
		{"s3 no key", "s3://bucket", "", "", "", "missing key"},
		{"s3 no key slash", "s3://bucket/", "", "", "", "missing key"},
		{"redis no key", "redis://", "", "", "", "missing key"},
		{"unknown scheme", "gs://bucket/key", "", "", "", "unknown scheme"},
	}
	for _, tc := range tests {
		t.Run(tc.test, func(t *testing.T) {
			loc, err := ParseLocation(tc.raw)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				var le *LocationError
				require.True(t, errors.As(err, &le))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.scheme, loc.Scheme)
			require.Equal(t, tc.container, loc.Container)
			require.Equal(t, tc.key, loc.Key)
			require.Equal(t, tc.raw, loc.String())
		})
	}
}

func TestResolverStdio(t *testing.T) {
	in := strings.NewReader("sketch-bytes")
	var out bytes.Buffer
	r := NewResolver(in, &out)
	ctx := context.Background()

	rc, err := r.Open(ctx, "-")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "sketch-bytes", string(got))

	require.NoError(t, r.Save(ctx, "-", bytes.NewReader([]byte("written")), 7))
	require.Equal(t, "written", out.String())
}

func TestResolverLocalFile(t *testing.T) {
	r := NewResolver(nil, nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "x.sketch")

	require.NoError(t, r.Save(ctx, path, bytes.NewReader([]byte("abc")), 3))
	rc, err := r.Open(ctx, "file://"+path)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))

	_, err = r.Open(ctx, path+".missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestResolverMockBackend(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	ctx := context.Background()

	mock := NewMockSketchStore(ctl)
	created := map[string]int{}
	r := NewResolver(nil, nil)
	r.Register(SchemeS3, func(ctx context.Context, container string) (SketchStore, error) {
		created[container]++
		return mock, nil
	})

	var uploaded []byte
	mock.EXPECT().Put(gomock.Any(), "day/shard-1.sketch", gomock.Any(), int64(5)).DoAndReturn(
		func(ctx context.Context, key string, r io.Reader, size int64) error {
			var err error
			uploaded, err = io.ReadAll(r)
			return err
		})
	mock.EXPECT().Open(gomock.Any(), "day/shard-2.sketch").Return(io.NopCloser(strings.NewReader("hello")), nil)

	require.NoError(t, r.Save(ctx, "s3://bucket/day/shard-1.sketch", bytes.NewReader([]byte("12345")), 5))
	require.Equal(t, "12345", string(uploaded))

	rc, err := r.Open(ctx, "s3://bucket/day/shard-2.sketch")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	require.Equal(t, "hello", string(got))
	require.Equal(t, 1, created["bucket"], "backend should be created once per bucket")
}

func TestResolverPutFailureUnblocksWriter(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	mock := NewMockSketchStore(ctl)
	r := NewResolver(nil, nil)
	r.Register(SchemeRedis, func(ctx context.Context, _ string) (SketchStore, error) { return mock, nil })
	mock.EXPECT().Put(gomock.Any(), "k", gomock.Any(), gomock.Any()).Return(&AccessError{msg: "denied"})

	big := bytes.NewReader(make([]byte, 4*1024*1024))
	err := r.Save(context.Background(), "redis://k", big, big.Size())
	require.ErrorContains(t, err, "redis://k")
	var ae *AccessError
	require.True(t, errors.As(err, &ae))
}

func TestResolverFactoryError(t *testing.T) {
	r := NewResolver(nil, nil)
	r.Register(SchemeAzure, func(ctx context.Context, _ string) (SketchStore, error) {
		return nil, errors.New("no endpoint for azure")
	})
	_, err := r.Open(context.Background(), "azblob://c/k")
	require.ErrorContains(t, err, "azblob://c/k")
	require.ErrorContains(t, err, "no endpoint for azure")
}

func TestResolverUnconfiguredBackends(t *testing.T) {
	r := NewResolver(nil, nil)
	ctx := context.Background()
	_, err := r.Open(ctx, "s3://bucket/key")
	require.ErrorContains(t, err, "DS__STORE__S3__ENDPOINT")
	_, err = r.Open(ctx, "redis://key")
	require.ErrorContains(t, err, "DS__STORE__REDIS__ENDPOINT")
	_, err = r.Open(ctx, "azblob://c/key")
	require.ErrorContains(t, err, "DS__STORE__AZURE__ENDPOINT")
}
