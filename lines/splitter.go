/*
Package lines splits a byte stream into delimiter separated lines.
*/
package lines

import (
	"bufio"
	"errors"
	"io"
)

const (
	Newline byte = '\n'
	NUL     byte = 0

	// Size of the buffered reader, lines longer than this are accumulated.
	readBufferBytes = 1024 * 1024
)

// Delimiter returns NUL for zero terminated input, else newline.
func Delimiter(zeroTerminated bool) byte {
	if zeroTerminated {
		return NUL
	}
	return Newline
}

// Splitter yields the lines of a stream one at a time, with the delimiter
// stripped. A trailing segment without a delimiter is still a line.
//
// Unlike bufio.Scanner there is no maximum line length.
type Splitter struct {
	r     *bufio.Reader
	delim byte
	line  []byte
	long  []byte
	err   error
	done  bool
	count uint64
	bytes uint64
}

func NewSplitter(r io.Reader, delim byte) *Splitter {
	return &Splitter{r: bufio.NewReaderSize(r, readBufferBytes), delim: delim}
}

// Next advances to the next line, returning false at the end of input or on error.
func (s *Splitter) Next() bool {
	if s.done {
		return false
	}
	s.long = s.long[:0]
	for {
		frag, err := s.r.ReadSlice(s.delim)
		if err == nil {
			s.bytes += uint64(len(frag))
			if len(s.long) > 0 {
				s.long = append(s.long, frag[:len(frag)-1]...)
				s.line = s.long
			} else {
				s.line = frag[:len(frag)-1]
			}
			s.count++
			return true
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			// line is longer than the buffer; keep reading
			s.bytes += uint64(len(frag))
			s.long = append(s.long, frag...)
			continue
		}
		s.done = true
		s.bytes += uint64(len(frag))
		if !errors.Is(err, io.EOF) {
			s.err = err
			return false
		}
		if len(s.long) == 0 && len(frag) == 0 {
			return false
		}
		// final segment with no delimiter
		s.long = append(s.long, frag...)
		s.line = s.long
		s.count++
		return true
	}
}

// Line returns the current line. It is only valid until the next call to Next.
func (s *Splitter) Line() []byte {
	return s.line
}

// Err returns the first non-EOF read error.
func (s *Splitter) Err() error {
	return s.err
}

// Count returns the number of lines returned so far.
func (s *Splitter) Count() uint64 {
	return s.count
}

// Bytes returns the number of input bytes consumed, including delimiters.
func (s *Splitter) Bytes() uint64 {
	return s.bytes
}
