package tcp

import (
	"bufio"
	stderrors "errors"
	"io"

	"schat/errors"
)

// bufio refuses smaller buffers.
const minLineBuffer = 16

// LineReader reads newline-terminated lines into a buffer that starts small
// and doubles its capacity whenever a line does not fit, up to max bytes.
type LineReader struct {
	r   *bufio.Reader
	buf []byte
	max int
}

func NewLineReader(r io.Reader, initial, limit int) *LineReader {
	initial = max(initial, minLineBuffer)
	return &LineReader{
		r:   bufio.NewReaderSize(r, initial),
		buf: make([]byte, 0, initial),
		max: max(limit, initial),
	}
}

// ReadLine returns the next line without its newline. A line longer than the
// bound fails with ErrLineTooLong and leaves the reader unusable. A last line
// without a newline is dropped and the read error is returned.
func (l *LineReader) ReadLine() (string, error) {
	l.buf = l.buf[:0]
	for {
		chunk, err := l.r.ReadSlice('\n')
		content := len(l.buf) + len(chunk)
		if err == nil {
			content--
		}
		if content > l.max {
			return "", errors.ErrLineTooLong
		}
		l.grow(len(l.buf) + len(chunk))
		l.buf = append(l.buf, chunk...)

		switch {
		case err == nil:
			return string(l.buf[:len(l.buf)-1]), nil
		case stderrors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return "", err
		}
	}
}

// Cap reports the current capacity of the line buffer.
func (l *LineReader) Cap() int {
	return cap(l.buf)
}

func (l *LineReader) grow(need int) {
	if need <= cap(l.buf) {
		return
	}
	size := cap(l.buf)
	for size < need {
		size *= 2
	}
	grown := make([]byte, len(l.buf), size)
	copy(grown, l.buf)
	l.buf = grown
}
