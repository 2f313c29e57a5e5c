package relay

import (
	"context"
	"sync"
)

type MemBroker struct {
	mu     sync.RWMutex
	subs   map[string][]chan Envelope
	bufLen int
}

func NewMemBroker(bufLen int) *MemBroker {
	if bufLen <= 0 {
		bufLen = 4096
	}
	return &MemBroker{subs: make(map[string][]chan Envelope), bufLen: bufLen}
}

func (b *MemBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	list := b.subs[topic]
	b.mu.RUnlock()

	// fanout：at-most-once，慢订阅者直接丢，不能卡住接收循环
	env := Envelope{Topic: topic, Payload: payload}
	for _, ch := range list {
		select {
		case ch <- env:
		default:
		}
	}
	return nil
}

// Subscribe 精确匹配 topic；ctx 结束时退订并关闭 channel
func (b *MemBroker) Subscribe(ctx context.Context, topics []string) (<-chan Envelope, error) {
	ch := make(chan Envelope, b.bufLen)
	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], ch)
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for _, t := range topics {
			b.subs[t] = without(b.subs[t], ch)
			if len(b.subs[t]) == 0 {
				delete(b.subs, t)
			}
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (b *MemBroker) Close() error { return nil }

func without(list []chan Envelope, ch chan Envelope) []chan Envelope {
	out := list[:0:0]
	for _, c := range list {
		if c != ch {
			out = append(out, c)
		}
	}
	return out
}
