package download

import (
	"bufio"
	"io"
)

const trackingBufferSize = 8 * 1024

// TrackingReader is a buffered reader that reports every fill of its buffer
// as a TaskChunk event. It counts bytes produced by the wrapped reader, which
// for compressed tasks are the bytes on the wire.
type TrackingReader struct {
	buf *bufio.Reader
}

var (
	_ io.Reader     = &TrackingReader{}
	_ io.ByteReader = &TrackingReader{}
)

func NewTrackingReader(r io.Reader, emitter Emitter, task int, total uint64) *TrackingReader {
	src := &fillObserver{r: r, emitter: emitter, task: task, total: total}
	return &TrackingReader{buf: bufio.NewReaderSize(src, trackingBufferSize)}
}

func (t *TrackingReader) Read(p []byte) (int, error) {
	return t.buf.Read(p)
}

// ReadByte keeps decoders that consume one byte at a time from issuing a
// read against the network for every byte.
func (t *TrackingReader) ReadByte() (byte, error) {
	return t.buf.ReadByte()
}

type fillObserver struct {
	r       io.Reader
	emitter Emitter
	task    int
	total   uint64
}

func (o *fillObserver) Read(p []byte) (int, error) {
	n, err := o.r.Read(p)
	if n > 0 {
		o.emitter.Emit(taskChunk(o.task, o.total, n))
	}
	return n, err
}
