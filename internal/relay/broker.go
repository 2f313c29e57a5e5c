package relay

import "context"

type Envelope struct {
	Topic   string
	Payload []byte
}

// Broker 事件出口：单机用内存，多进程走 NATS
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topics []string) (<-chan Envelope, error)
	Close() error
}
