package client

import (
	"context"
	"fmt"
	"io"

	"ampere.com/internal/relay"
)

// Tail 订阅 relay 的 topic（可以带 NATS 通配符，例如 ampere:fill:*），
// 每条事件写一行 "<topic> <json>"，直到 ctx 结束。返回写出的事件数
func Tail(ctx context.Context, b relay.Broker, topics []string, w io.Writer) (int, error) {
	ch, err := b.Subscribe(ctx, topics)
	if err != nil {
		return 0, fmt.Errorf("subscribe %v: %w", topics, err)
	}

	var n int
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case env, ok := <-ch:
			if !ok {
				return n, nil
			}
			if _, err := fmt.Fprintf(w, "%s %s\n", env.Topic, env.Payload); err != nil {
				return n, err
			}
			n++
		}
	}
}
