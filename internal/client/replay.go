package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"ampere.com/internal/market"
	"ampere.com/internal/relay"
	"go.uber.org/zap"
)

// Replay 把抓下来的交易所行文件灌进接收循环，命令侧写到 io.Discard。
// 返回成功分发的事件数（NoOp 和解析失败的行不算）。
func Replay(ctx context.Context, path string, opt RunOptions) (events int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	m := market.New(f, io.Discard, market.Options{Logger: log})
	Journal(m.Dispatcher(), log)
	// 接收循环是单协程，计数不用加锁
	for _, k := range market.Kinds {
		m.Dispatcher().Subscribe(k, func(market.Message) { events++ })
	}
	if opt.Broker != nil {
		detach := relay.New(opt.Broker, opt.Prefix, log).Attach(ctx, m.Dispatcher())
		defer detach()
	}

	err = m.ReceiveLoop()
	return events, err
}
