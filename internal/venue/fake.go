package venue

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"ampere.com/pkg/safe"
	"go.uber.org/zap"
)

var ErrNoClient = errors.New("venue: no client connected")

type FakeOptions struct {
	Logger *zap.Logger
	// Greeting 收到 HELLO 后依次回给客户端，例如 "HELLO 1000 IBM:0" / "OPEN IBM"
	Greeting []string
	// AutoReply 开启后：ADD/CONVERT 回 ACK，CANCEL 回 OUT
	AutoReply bool
}

// FakeVenue 本地假交易所：同一时间只服务一个客户端，记录收到的每一行，可以主动推行情
type FakeVenue struct {
	ln  net.Listener
	opt FakeOptions
	log *zap.Logger

	mu     sync.Mutex
	conn   net.Conn
	w      *bufio.Writer
	lines  []string
	notify chan struct{} // 有新行或新连接时关闭并替换
}

func Listen(addr string, opt FakeOptions) (*FakeVenue, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &FakeVenue{ln: ln, opt: opt, log: opt.Logger, notify: make(chan struct{})}, nil
}

func (v *FakeVenue) Addr() string { return v.ln.Addr().String() }

// Serve 顺序 accept，直到 ctx 结束或 listener 被关闭
func (v *FakeVenue) Serve(ctx context.Context) error {
	safe.GoCtx(ctx, func(ctx context.Context) {
		<-ctx.Done()
		_ = v.ln.Close()
	})

	for {
		conn, err := v.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		v.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))
		v.attach(conn)
		v.serveConn(conn)
		v.detach(conn)
		v.log.Info("client disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}
}

func (v *FakeVenue) attach(conn net.Conn) {
	v.mu.Lock()
	v.conn = conn
	v.w = bufio.NewWriter(conn)
	v.wake()
	v.mu.Unlock()
}

func (v *FakeVenue) detach(conn net.Conn) {
	v.mu.Lock()
	if v.conn == conn {
		v.conn, v.w = nil, nil
	}
	v.mu.Unlock()
	_ = conn.Close()
}

func (v *FakeVenue) serveConn(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		v.log.Debug("RECV", zap.String("line", line))

		v.mu.Lock()
		v.lines = append(v.lines, line)
		v.wake()
		v.mu.Unlock()

		for _, reply := range v.replies(line) {
			if err := v.Push(reply); err != nil {
				v.log.Warn("reply failed", zap.String("line", reply), zap.Error(err))
				return
			}
		}
	}
}

func (v *FakeVenue) replies(line string) []string {
	tok := strings.Fields(line)
	if len(tok) == 0 {
		return nil
	}
	switch strings.ToUpper(tok[0]) {
	case "HELLO":
		return v.opt.Greeting
	case "ADD", "CONVERT":
		if v.opt.AutoReply && len(tok) > 1 {
			return []string{"ACK " + tok[1]}
		}
	case "CANCEL":
		if v.opt.AutoReply && len(tok) > 1 {
			return []string{"OUT " + tok[1]}
		}
	}
	return nil
}

// Push 给当前客户端写一行（自动补 '\n'）
func (v *FakeVenue) Push(line string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.w == nil {
		return ErrNoClient
	}
	if _, err := v.w.WriteString(line + "\n"); err != nil {
		return err
	}
	if err := v.w.Flush(); err != nil {
		return err
	}
	v.log.Debug("SEND", zap.String("line", line))
	return nil
}

// Kick 断开当前客户端，客户端的接收循环会读到 EOF
func (v *FakeVenue) Kick() error {
	v.mu.Lock()
	conn := v.conn
	v.mu.Unlock()
	if conn == nil {
		return ErrNoClient
	}
	return conn.Close()
}

func (v *FakeVenue) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.lines))
	copy(out, v.lines)
	return out
}

// WaitLines 等到至少收到 n 行
func (v *FakeVenue) WaitLines(ctx context.Context, n int) ([]string, error) {
	for {
		v.mu.Lock()
		if len(v.lines) >= n {
			out := make([]string, len(v.lines))
			copy(out, v.lines)
			v.mu.Unlock()
			return out, nil
		}
		ch := v.notify
		v.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return v.Lines(), ctx.Err()
		}
	}
}

// WaitClient 等到有客户端连上
func (v *FakeVenue) WaitClient(ctx context.Context) error {
	for {
		v.mu.Lock()
		if v.conn != nil {
			v.mu.Unlock()
			return nil
		}
		ch := v.notify
		v.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (v *FakeVenue) Close() error {
	err := v.ln.Close()
	_ = v.Kick()
	return err
}

// 调用方持有 mu
func (v *FakeVenue) wake() {
	close(v.notify)
	v.notify = make(chan struct{})
}
