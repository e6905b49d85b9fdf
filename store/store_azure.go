package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
)

// One is all that is required, if you see EOF more than twice it's the end of the actual blob not just a chunk.
const MAX_CONSECUTIVE_EOF = 1

type RetryReaderWrapper struct {
	innerRetryReader *blob.RetryReader
}

/*
Continually retry reading the retryReader until we are confident we have all the data from azure.

The azure RetryReader returns EOF at the end of each chunk of a blob rather than at the end of the blob,
which would otherwise look like a truncated sketch.
*/
func (rrw *RetryReaderWrapper) Read(p []byte) (n int, err error) {
	readBytes, err := rrw.innerRetryReader.Read(p)
	if err != nil && err != io.EOF {
		return readBytes, err
	}
	totalReadBytes := readBytes
	consecutiveEofWithNoDataRead := 0
	for consecutiveEofWithNoDataRead < MAX_CONSECUTIVE_EOF {
		if totalReadBytes == len(p) {
			return totalReadBytes, nil
		}

		readBytes, err = rrw.innerRetryReader.Read(p[totalReadBytes:])
		totalReadBytes += readBytes
		if err != nil && err != io.EOF {
			return totalReadBytes, err
		}
		if err == io.EOF && readBytes == 0 {
			consecutiveEofWithNoDataRead += 1
		} else if readBytes != 0 {
			consecutiveEofWithNoDataRead = 0
		}
	}
	return totalReadBytes, err
}

func (rrw *RetryReaderWrapper) Close() error {
	return rrw.innerRetryReader.Close()
}

// StoreAzure stores sketches as blobs in one Azure container.
type StoreAzure struct {
	client        *azblob.Client
	containerName string
}

// NewAzureStore connects to the blob service at endpoint.
// The endpoint must be in the format "https://<storage-account-name>.blob.core.windows.net/".
// storageAccount is optional, and if empty the name will be extracted from the endpoint.
// An empty accessKey uses DefaultAzureCredential (AZURE_CLIENT_SECRET, AZURE_TENANT_ID, AZURE_CLIENT_ID).
func NewAzureStore(endpoint string, containerName string, storageAccount string, accessKey string) (*StoreAzure, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint for azure, set DS__STORE__AZURE__ENDPOINT")
	}
	var client *azblob.Client
	if accessKey != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, err
		}
		// Azurite local storage emulator will be in format http://<ip>:<port>/<storage-account-name>/
		// therefore storageAccount must be set manually for Azurite support
		storeName := storageAccount
		if storeName == "" {
			storeName = strings.Split(u.Hostname(), ".")[0]
		}
		cred, err := azblob.NewSharedKeyCredential(storeName, accessKey)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain a credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain blobstore: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain a credential: %w", err)
		}
		client, err = azblob.NewClient(endpoint, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain blobstore: %w", err)
		}
	}
	return &StoreAzure{client, containerName}, nil
}

func newAzureFromSettings(ctx context.Context, container string) (SketchStore, error) {
	az := st.Store.Azure
	return NewAzureStore(az.Endpoint, container, az.StorageAccount, az.AccessKey)
}

func (s *StoreAzure) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("azblob", start, "open", err)
	}(time.Now())
	get, err := s.client.DownloadStream(ctx, s.containerName, key, nil)
	if err != nil {
		err = s.translate(err, key)
		return nil, err
	}
	retryReader := get.NewRetryReader(ctx, &blob.RetryReaderOptions{})
	return &RetryReaderWrapper{innerRetryReader: retryReader}, nil
}

func (s *StoreAzure) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("azblob", start, "put", err)
	}(time.Now())

	// create container if required
	_, err = s.client.CreateContainer(ctx, s.containerName, nil)
	if err == nil {
		st.Logger.Info().Str("container", s.containerName).Msg("created container")
	} else if !bloberror.HasCode(err, bloberror.ResourceAlreadyExists, bloberror.ContainerAlreadyExists) {
		err = s.translate(err, key)
		return err
	}
	err = nil

	options := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}
	// If sketch is large enough use concurrency.
	if size > MAX_FILE_BYTES_BEFORE_CONCURRENT_UPLOAD {
		options.BlockSize = int64(CONCURRENT_BUFFER_SIZE_BYTES)
		options.Concurrency = NUM_CONCURRENT_UPLOAD_THREADS
	}
	_, err = s.client.UploadStream(ctx, s.containerName, key, bufio.NewReaderSize(r, MAX_BUFFERED_READER_BYTES), options)
	return err
}

func (s *StoreAzure) translate(err error, key string) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("%w", &NotFoundError{key: s.containerName + "/" + key})
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Errorf("%w", &AccessError{msg: string(respErr.ErrorCode)})
	}
	return fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
}
