package aggregators

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/Ahmed-Sermani/pageranker/bsp"
)

var _ bsp.Aggregator = (*Float64MaxAggregator)(nil)

// Float64MaxAggregator implements a concurrent-safe tracker of the maximum
// of the aggregated float64 values. It uses a mutex free implementation.
type Float64MaxAggregator struct {
	curMax float64
}

func (a *Float64MaxAggregator) Type() string {
	return "Float64MaxAggregator"
}

func (a *Float64MaxAggregator) Get() float64 {
	return loadFloat64(&a.curMax)
}

func (a *Float64MaxAggregator) Set(v float64) {
	for {
		oldCur := loadFloat64(&a.curMax)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldCur),
			math.Float64bits(v),
		) {
			return
		}
	}
}

func (a *Float64MaxAggregator) Aggregate(v float64) {
	for {
		oldCur := loadFloat64(&a.curMax)
		if v <= oldCur {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldCur),
			math.Float64bits(v),
		) {
			return
		}
	}
}
