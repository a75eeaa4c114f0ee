package player

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const defaultMaxLineLength = 512

// ErrLineTooLong is returned for an input line over the limit. The rest of
// the line has been discarded and the reader can be used again.
var ErrLineTooLong = errors.New("input line too long")

type lineReader struct {
	br  *bufio.Reader
	max int
}

func newLineReader(r io.Reader, max int) *lineReader {
	if max <= 0 {
		max = defaultMaxLineLength
	}
	return &lineReader{
		// Room for the terminator and a stray carriage return.
		br:  bufio.NewReaderSize(r, max+2),
		max: max,
	}
}

// ReadLine returns the next line without its terminator.
func (r *lineReader) ReadLine() (string, error) {
	line, err := r.br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.br.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		return "", err
	}

	line = bytes.TrimRight(line, "\r\n")
	if len(line) > r.max {
		return "", ErrLineTooLong
	}
	return string(line), nil
}
