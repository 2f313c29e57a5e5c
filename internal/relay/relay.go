package relay

import (
	"context"
	"time"

	"ampere.com/internal/market"
	"ampere.com/pkg/metrics"
	"go.uber.org/zap"
)

const DefaultPrefix = "ampere"

// Relay 把接收循环解出来的事件转发到 broker（单机=内存，多机=NATS）
type Relay struct {
	broker  Broker
	prefix  string
	log     *zap.Logger
	timeout time.Duration
}

func New(broker Broker, prefix string, log *zap.Logger) *Relay {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{broker: broker, prefix: prefix, log: log, timeout: time.Second}
}

// Attach 订阅所有消息种类；返回值取消全部订阅。
// 回调跑在接收循环里，发布失败只记日志和指标，不往上抛。
func (r *Relay) Attach(ctx context.Context, d *market.Dispatcher) (detach func()) {
	unsubs := make([]func(), 0, len(market.Kinds))
	for _, k := range market.Kinds {
		unsubs = append(unsubs, d.Subscribe(k, func(msg market.Message) {
			r.forward(ctx, msg)
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (r *Relay) forward(ctx context.Context, msg market.Message) {
	if ctx.Err() != nil {
		metrics.RelayDroppedTotal.WithLabelValues("closed").Inc()
		return
	}
	topic, payload, err := Encode(r.prefix, msg)
	if err != nil {
		metrics.RelayDroppedTotal.WithLabelValues("encode").Inc()
		r.log.Error("relay encode failed", zap.Stringer("kind", msg.Kind()), zap.Error(err))
		return
	}

	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.broker.Publish(pctx, topic, payload); err != nil {
		metrics.RelayDroppedTotal.WithLabelValues("publish").Inc()
		r.log.Warn("relay publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
