package server

import "sync"

// bytePool recycles response-encoding scratch buffers across connections,
// the same pattern the cache-server teacher used for its wire buffers.
type bytePool struct {
	pool sync.Pool
}

func newBytePool() *bytePool {
	return &bytePool{
		pool: sync.Pool{
			New: func() any {
				return make([]byte, 0, 1024)
			},
		},
	}
}

func (bp *bytePool) get() []byte {
	return bp.pool.Get().([]byte)
}

func (bp *bytePool) put(buf []byte) {
	if cap(buf) <= 64*1024 {
		bp.pool.Put(buf[:0])
	}
}
