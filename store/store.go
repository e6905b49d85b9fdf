/*
Package store reads and writes serialized sketches at a location.

A location is one of:

	-                         stdin / stdout
	path or file://path       local filesystem
	s3://bucket/key           S3 compatible object store (minio client)
	azblob://container/blob   Azure blob storage
	redis://key               redis string value

Shards can therefore upload partial sketches to shared storage and a
combine step elsewhere can read them back without a shared filesystem.
*/
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
)

// Size of the buffered readers buffer 1MB
const MAX_BUFFERED_READER_BYTES = 1024 * 1024

// Perform a concurrent upload at 50MiB
const MAX_FILE_BYTES_BEFORE_CONCURRENT_UPLOAD = 50 * 1024 * 1024

// Concurrent upload threads
const NUM_CONCURRENT_UPLOAD_THREADS = 10

// Buffer_Sizes (must be 5MiB+ for AWS minimum chunk size)
const CONCURRENT_BUFFER_SIZE_BYTES = 6 * 1024 * 1024

var contentType = "application/octet-stream"

/* Provide sketch object storage. */
type SketchStore interface {
	// Open returns a reader over the whole object stored at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Put stores size bytes read from r at key, replacing any existing object.
	// The object must not become visible until all bytes were stored.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

type NotFoundError struct {
	key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.key)
}

type AccessError struct {
	msg string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("no access: %v", e.msg)
}

type LocationError struct {
	location string
	msg      string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("bad location %q: %s", e.location, e.msg)
}

// reportStoreOpMetric report a store method duration for prometheus
func reportStoreOpMetric(backend string, startTime time.Time, operationName string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	prom.StoreOperationDuration.WithLabelValues(backend, operationName, result).Observe(time.Since(startTime).Seconds())
}
