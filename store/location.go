package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	SchemeStdio = "-"
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeAzure = "azblob"
	SchemeRedis = "redis"
)

// Location is a parsed sketch location.
type Location struct {
	Raw    string
	Scheme string
	// Bucket or container, empty for schemes without one.
	Container string
	Key       string
}

func (l Location) String() string {
	return l.Raw
}

// ParseLocation splits raw into scheme, container and key.
// Anything without a known scheme prefix is a local path.
func ParseLocation(raw string) (Location, error) {
	loc := Location{Raw: raw}
	if raw == "" {
		return loc, &LocationError{raw, "empty"}
	}
	if raw == SchemeStdio {
		loc.Scheme = SchemeStdio
		return loc, nil
	}
	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		loc.Scheme = SchemeFile
		loc.Key = raw
		return loc, nil
	}
	loc.Scheme = strings.ToLower(scheme)
	switch loc.Scheme {
	case SchemeFile, SchemeRedis:
		loc.Key = rest
	case SchemeS3, SchemeAzure:
		container, key, _ := strings.Cut(rest, "/")
		if container == "" {
			return loc, &LocationError{raw, "missing bucket or container"}
		}
		loc.Container = container
		loc.Key = key
	default:
		return loc, &LocationError{raw, fmt.Sprintf("unknown scheme %q", scheme)}
	}
	if loc.Key == "" {
		return loc, &LocationError{raw, "missing key"}
	}
	return loc, nil
}

// Factory opens the store for one container of a scheme.
type Factory func(ctx context.Context, container string) (SketchStore, error)

// Resolver maps locations onto stores, connecting to each backend at most once per container.
type Resolver struct {
	stdin  io.Reader
	stdout io.Writer

	mu        sync.Mutex
	factories map[string]Factory
	opened    map[string]SketchStore
}

// NewResolver returns a resolver using the configured backends.
// "-" reads stdin and writes stdout.
func NewResolver(stdin io.Reader, stdout io.Writer) *Resolver {
	r := &Resolver{
		stdin:     stdin,
		stdout:    stdout,
		factories: map[string]Factory{},
		opened:    map[string]SketchStore{},
	}
	r.Register(SchemeFile, func(ctx context.Context, _ string) (SketchStore, error) { return NewLocalStore(""), nil })
	r.Register(SchemeS3, newS3FromSettings)
	r.Register(SchemeAzure, newAzureFromSettings)
	r.Register(SchemeRedis, newRedisFromSettings)
	return r
}

// Register replaces the backend for scheme.
func (r *Resolver) Register(scheme string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[scheme] = f
	for k := range r.opened {
		if strings.HasPrefix(k, scheme+"://") {
			delete(r.opened, k)
		}
	}
}

func (r *Resolver) store(ctx context.Context, loc Location) (SketchStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := loc.Scheme + "://" + loc.Container
	if s, ok := r.opened[id]; ok {
		return s, nil
	}
	f, ok := r.factories[loc.Scheme]
	if !ok {
		return nil, &LocationError{loc.Raw, fmt.Sprintf("no backend for scheme %q", loc.Scheme)}
	}
	s, err := f(ctx, loc.Container)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc.Raw, err)
	}
	r.opened[id] = s
	return s, nil
}

// Open returns a reader over the sketch bytes at raw.
func (r *Resolver) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if loc.Scheme == SchemeStdio {
		return io.NopCloser(r.stdin), nil
	}
	s, err := r.store(ctx, loc)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, loc.Key)
}

// Save streams size bytes produced by src to raw.
func (r *Resolver) Save(ctx context.Context, raw string, src io.WriterTo, size int64) error {
	loc, err := ParseLocation(raw)
	if err != nil {
		return err
	}
	if loc.Scheme == SchemeStdio {
		_, err = src.WriteTo(r.stdout)
		return err
	}
	s, err := r.store(ctx, loc)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	written := make(chan error, 1)
	go func() {
		_, err := src.WriteTo(pw)
		pw.CloseWithError(err)
		written <- err
	}()
	err = s.Put(ctx, loc.Key, pr, size)
	// unblock the writer if the store stopped reading early
	pr.CloseWithError(io.ErrClosedPipe)
	werr := <-written
	if err != nil {
		return fmt.Errorf("%s: %w", loc.Raw, err)
	}
	if werr != nil {
		return fmt.Errorf("%s: %w", loc.Raw, werr)
	}
	return nil
}
