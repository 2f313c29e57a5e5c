package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"ampere.com/pkg/metrics"
	"github.com/nats-io/nats.go"
)

const (
	natsPending = 8192
	drainWait   = 5 * time.Second
)

var ErrDrainTimeout = errors.New("relay: nats drain timed out")

// NatsBroker topic 里的 ':' 对应 subject 里的 '.'，ampere:book:IBM <-> ampere.book.IBM
type NatsBroker struct {
	nc     *nats.Conn
	closed chan struct{}
}

// NewNatsBroker 会占用 ClosedHandler，用来等 Drain 结束
func NewNatsBroker(url string, opts ...nats.Option) (*NatsBroker, error) {
	closed := make(chan struct{})
	opts = append(opts, nats.ClosedHandler(func(*nats.Conn) { close(closed) }))
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NatsBroker{nc: nc, closed: closed}, nil
}

func (b *NatsBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.nc.Publish(topicToSubject(topic), payload)
}

// Subscribe 所有 topic 共用一个 ChanSubscribe 管道；管道满了 NATS 按慢消费者丢消息。
// ctx 结束时退订并关闭返回的 channel
func (b *NatsBroker) Subscribe(ctx context.Context, topics []string) (<-chan Envelope, error) {
	msgs := make(chan *nats.Msg, natsPending)
	subs := make([]*nats.Subscription, 0, len(topics))
	for _, t := range topics {
		sub, err := b.nc.ChanSubscribe(topicToSubject(t), msgs)
		if err != nil {
			unsubscribeAll(subs)
			return nil, err
		}
		subs = append(subs, sub)
	}

	out := make(chan Envelope, 256)
	go func() {
		defer close(out)
		defer unsubscribeAll(subs)
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-msgs:
				env := Envelope{Topic: subjectToTopic(m.Subject), Payload: m.Data}
				select {
				case out <- env:
				default:
					metrics.RelayDroppedTotal.WithLabelValues("slow_consumer").Inc()
				}
			}
		}
	}()
	return out, nil
}

// Close 先 Drain 把已发布的消息送完再断开，最多等 drainWait
func (b *NatsBroker) Close() error {
	if b.nc == nil || b.nc.IsClosed() {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return err
	}
	select {
	case <-b.closed:
		return nil
	case <-time.After(drainWait):
		b.nc.Close()
		return ErrDrainTimeout
	}
}

func unsubscribeAll(subs []*nats.Subscription) {
	for _, s := range subs {
		_ = s.Unsubscribe()
	}
}

func topicToSubject(topic string) string { return strings.ReplaceAll(topic, ":", ".") }
func subjectToTopic(subj string) string  { return strings.ReplaceAll(subj, ".", ":") }
