package decompress

import (
	"bytes"
	"errors"
	"io"
)

var _ io.Reader = &peekReader{}

// peekReader lets the detector look at the head of a stream without losing
// those bytes for the decompressor that follows.
type peekReader struct {
	reader io.Reader
	buffer *bytes.Buffer
}

func (p *peekReader) Read(b []byte) (int, error) {
	if p.buffer != nil && p.buffer.Len() > 0 {
		n, err := p.buffer.Read(b)
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return n, err
	}
	return p.reader.Read(b)
}

// Peek returns up to n bytes from the head of the stream. Repeated calls
// extend the peeked region. On a short stream it returns what is available
// together with io.EOF.
func (p *peekReader) Peek(n int) ([]byte, error) {
	if p.buffer == nil {
		p.buffer = bytes.NewBuffer(make([]byte, 0, n))
	}
	missing := n - p.buffer.Len()
	if missing <= 0 {
		return p.buffer.Bytes()[:n], nil
	}
	_, err := io.CopyN(p.buffer, p.reader, int64(missing))
	return p.buffer.Bytes(), err
}
