package listener

import (
	"bytes"
	"io"
)

// crlfReadWriter converts \n to \r\n on writes and folds \r\n or a lone
// \r to \n on reads, for clients that send telnet-style line endings.
type crlfReadWriter struct {
	rw io.ReadWriter

	// The last byte read was \r, so a leading \n belongs to it.
	afterCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)
		if n == 0 {
			return 0, err
		}

		data := p[:n]
		if c.afterCR && data[0] == '\n' {
			data = data[1:]
		}
		c.afterCR = len(data) > 0 && data[len(data)-1] == '\r'

		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)

		// Only the swallowed \n arrived; read again rather than return 0, nil.
		if n == 0 && err == nil {
			continue
		}
		return n, err
	}
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.rw.Write(converted)
	// Report the caller's length, not the expanded one.
	return len(p), err
}
