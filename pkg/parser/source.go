package parser

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxLineSize bounds a marker line, terminator included. Longer lines
// without the marker are skipped.
const MaxLineSize = 1024 * 1024

// ErrLineTooLong is returned for a marker line longer than MaxLineSize.
var ErrLineTooLong = errors.New("marker line exceeds maximum length")

// FileSource implements LineSource for a single log file.
type FileSource struct {
	path    string
	parser  *Parser
	maxLine int

	file    *os.File
	reader  *bufio.Reader
	buf     []byte
	lineNum int
	done    bool
}

// NewFileSource creates a LineSource over the file at path.
// The parser decides which lines carry the marker.
// The file is opened lazily on the first call to Next.
func NewFileSource(path string, p *Parser) *FileSource {
	return &FileSource{
		path:    path,
		parser:  p,
		maxLine: MaxLineSize,
	}
}

// Next returns the next marker line.
// Returns io.EOF when the file is exhausted.
func (s *FileSource) Next(ctx context.Context) (*MarkedLine, error) {
	if s.done {
		return nil, io.EOF
	}

	if s.reader == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, skip, err := s.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s at line %d: %w", s.path, s.lineNum+1, err)
		}
		s.lineNum++
		if skip {
			continue
		}

		payload, ok := s.parser.Payload(string(line))
		if !ok {
			continue
		}

		return &MarkedLine{
			Payload: payload,
			Source:  s.path,
			LineNum: s.lineNum,
		}, nil
	}

	s.done = true
	if err := s.Close(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// readLine returns the next line without its terminator. A line longer
// than maxLine is consumed in full but only searched for the marker:
// skip is true when it has none, ErrLineTooLong when it does.
func (s *FileSource) readLine() (line []byte, skip bool, err error) {
	marker := []byte(s.parser.Marker())
	keep := len(marker) - 1
	s.buf = s.buf[:0]
	read := 0
	overlong, marked := false, false

	for {
		chunk, rerr := s.reader.ReadSlice('\n')
		if rerr != nil && rerr != bufio.ErrBufferFull && rerr != io.EOF {
			return nil, false, rerr
		}
		read += len(chunk)
		s.buf = append(s.buf, chunk...)

		if read > s.maxLine {
			overlong = true
		}
		if overlong {
			// Retain enough of the tail to match a marker split across chunks.
			if !marked && bytes.Contains(s.buf, marker) {
				marked = true
			}
			if len(s.buf) > keep {
				s.buf = append(s.buf[:0], s.buf[len(s.buf)-keep:]...)
			}
		}

		if rerr == bufio.ErrBufferFull {
			continue
		}
		if rerr == io.EOF && read == 0 {
			return nil, false, io.EOF
		}
		break
	}

	if overlong {
		if marked {
			return nil, false, ErrLineTooLong
		}
		return nil, true, nil
	}

	line = bytes.TrimSuffix(s.buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, false, nil
}

// Lines returns the number of lines read so far.
func (s *FileSource) Lines() int {
	return s.lineNum
}

// Close releases resources.
func (s *FileSource) Close() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", s.path, err)
	}

	s.file = f
	s.reader = bufio.NewReaderSize(f, 64*1024)
	s.lineNum = 0

	return nil
}
