package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
)

/* Store sketches via s3 provider. */
type StoreS3 struct {
	client *minio.Client
	bucket string
}

/** Creates a new S3 store for bucket using the configured endpoint and credentials. */
func NewS3Store(endpoint string, accessKey string, secretKey string, secure bool, bucket string, region string) (*StoreS3, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint for s3, set DS__STORE__S3__ENDPOINT")
	}
	opts := minio.Options{
		Secure: secure,
		Region: region,
	}
	if accessKey != "" {
		opts.Creds = credentials.NewStaticV4(accessKey, secretKey, "")
	} else {
		opts.Creds = credentials.NewIAM("")
	}
	client, err := minio.New(endpoint, &opts)
	if err != nil {
		return nil, err
	}
	return &StoreS3{client, bucket}, nil
}

func newS3FromSettings(ctx context.Context, bucket string) (SketchStore, error) {
	s3 := st.Store.S3
	return NewS3Store(s3.Endpoint, s3.AccessKey, s3.SecretKey, s3.Secure, bucket, s3.Region)
}

func (s *StoreS3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("s3", start, "open", err)
	}(time.Now())
	reader, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err, key)
	}
	// GetObject is lazy, stat forces the request so missing keys surface here
	if _, err = reader.Stat(); err != nil {
		reader.Close()
		return nil, s.translate(err, key)
	}
	return reader, nil
}

func (s *StoreS3) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("s3", start, "put", err)
	}(time.Now())

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.translate(err, key)
	}
	if !exists {
		if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return s.translate(err, key)
		}
	}

	options := minio.PutObjectOptions{ContentType: contentType}
	// If sketch is large enough use concurrency.
	if size > MAX_FILE_BYTES_BEFORE_CONCURRENT_UPLOAD {
		options.NumThreads = uint(NUM_CONCURRENT_UPLOAD_THREADS)
		options.ConcurrentStreamParts = true
		options.PartSize = uint64(CONCURRENT_BUFFER_SIZE_BYTES)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bufio.NewReaderSize(r, MAX_BUFFERED_READER_BYTES), size, options)
	return err
}

func (s *StoreS3) translate(err error, key string) error {
	code := minio.ToErrorResponse(err).Code
	if code == "NoSuchKey" || code == "NoSuchBucket" {
		return fmt.Errorf("%w", &NotFoundError{key: s.bucket + "/" + key})
	}
	if code == "" {
		return fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
	}
	return fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", code)})
}
