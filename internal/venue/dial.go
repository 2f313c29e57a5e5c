package venue

import (
	"context"
	"net"
	"time"

	"ampere.com/pkg/xerr"
)

const DefaultDialTimeout = 5 * time.Second

// Dial 连接交易所；一次性拨号，断线重连不在这里做
func Dial(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	d := net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, xerr.Wrap(xerr.CodeStream, "dial venue "+addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// 命令行很短，关掉 Nagle
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}
