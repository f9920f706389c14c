package id

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases, if it overflows, it will be reset to 1.
// The value occupies a whole cache line to avoid false sharing between
// the stress sessions pulling ids concurrently.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val atomic.Uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = id.val.Add(1); v == 0 {
		v = id.val.Add(1)
	}
	return v
}

func MonotonicNonZeroID() (Generator, error) {
	return MonotonicNonZeroIDFrom(0)
}

// MonotonicNonZeroIDFrom starts the sequence right after offset.
func MonotonicNonZeroIDFrom(offset uint64) (Generator, error) {
	src := &monotonicNonZeroID{}
	src.val.Store(offset)
	return &defaultID{
		number: src.next,
		str: func() string {
			return strconv.FormatUint(src.next(), 10)
		},
	}, nil
}
