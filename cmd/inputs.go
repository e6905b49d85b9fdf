package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

// lazyReader opens its location on first read and closes it at the end,
// so many inputs can be listed without holding them all open.
type lazyReader struct {
	ctx      context.Context
	resolver *store.Resolver
	loc      string
	// progress bar destination, nil for none
	progress io.Writer

	rc   io.ReadCloser
	r    io.Reader
	bar  *progressbar.ProgressBar
	done bool
}

func (l *lazyReader) Read(p []byte) (int, error) {
	if l.done {
		return 0, io.EOF
	}
	if l.rc == nil {
		rc, err := l.resolver.Open(l.ctx, l.loc)
		if err != nil {
			l.done = true
			return 0, err
		}
		l.rc = rc
		l.r = rc
		if l.progress != nil {
			l.bar = newProgressBar(l.loc, localSize(l.loc), l.progress)
			l.r = io.TeeReader(rc, l.bar)
		}
	}
	n, err := l.r.Read(p)
	if err != nil {
		l.Close()
	}
	return n, err
}

func (l *lazyReader) Close() error {
	l.done = true
	if l.bar != nil {
		l.bar.Finish()
		l.bar = nil
	}
	if l.rc == nil {
		return nil
	}
	err := l.rc.Close()
	l.rc = nil
	return err
}

// localSize returns the size of a local file location, or -1 if unknown.
func localSize(raw string) int64 {
	loc, err := store.ParseLocation(raw)
	if err != nil || loc.Scheme != store.SchemeFile {
		return -1
	}
	fi, err := os.Stat(loc.Key)
	if err != nil {
		return -1
	}
	return fi.Size()
}

func newProgressBar(name string, size int64, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// stdinOnce rejects arguments that would read stdin more than once.
func stdinOnce(locs ...[]string) error {
	seen := 0
	for _, group := range locs {
		for _, l := range group {
			if l == store.SchemeStdio {
				seen++
			}
		}
	}
	if seen > 1 {
		return fmt.Errorf("stdin ('-') can only be read once")
	}
	return nil
}
