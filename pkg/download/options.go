package download

import "runtime"

const defaultBufferSize = 16 * 1024

type Options struct {
	// Maximum number of tasks transferring at the same time. If set to zero,
	// GOMAXPROCS*4 will be used.
	Concurrency int

	// Size of the buffer each task reads into before writing to disk. If set
	// to zero, 16 KiB will be used.
	BufferSize int

	Policy CompletionPolicy
}

func (o Options) concurrency() int64 {
	if o.Concurrency <= 0 {
		return int64(runtime.GOMAXPROCS(0) * 4)
	}
	return int64(o.Concurrency)
}

func (o Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return defaultBufferSize
	}
	return o.BufferSize
}
