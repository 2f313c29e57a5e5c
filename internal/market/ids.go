package market

import "sync/atomic"

// IDAllocator 无锁的订单号分配器，进程内单调递增，第一个是 1
type IDAllocator struct {
	last atomic.Int64
}

func (a *IDAllocator) Next() OrderID {
	return OrderID(a.last.Add(1))
}

// Last 最近一次分配出去的 id，还没分配过是 0
func (a *IDAllocator) Last() OrderID {
	return OrderID(a.last.Load())
}
