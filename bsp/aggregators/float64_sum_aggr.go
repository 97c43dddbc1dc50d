package aggregators

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/Ahmed-Sermani/pageranker/bsp"
)

var _ bsp.Aggregator = (*Float64SumAggregator)(nil)

// Float64SumAggregator implements a concurrent-safe accumulator of float64
// values. It uses a mutex free implementation.
type Float64SumAggregator struct {
	curSum float64
}

func (a *Float64SumAggregator) Type() string {
	return "Float64SumAggregator"
}

func (a *Float64SumAggregator) Get() float64 {
	return loadFloat64(&a.curSum)
}

func (a *Float64SumAggregator) Set(v float64) {
	for {
		oldCur := loadFloat64(&a.curSum)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curSum)),
			math.Float64bits(oldCur),
			math.Float64bits(v),
		) {
			return
		}
	}
}

func (a *Float64SumAggregator) Aggregate(v float64) {
	for {
		oldCur := loadFloat64(&a.curSum)
		newCur := oldCur + v
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curSum)),
			math.Float64bits(oldCur),
			math.Float64bits(newCur),
		) {
			return
		}
	}
}

// atomic load for float64
// it works by casting the float64 to uint64 then loading the latter.
func loadFloat64(fp *float64) float64 {
	return math.Float64frombits(
		atomic.LoadUint64((*uint64)(unsafe.Pointer(fp))),
	)
}
