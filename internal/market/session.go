package market

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ampere.com/pkg/logger"
	"ampere.com/pkg/metrics"
	"ampere.com/pkg/xerr"
	"go.uber.org/zap"
)

var ErrLoopRunning = errors.New("market: receive loop already running")

type Options struct {
	// Logger 为空时用全局 logger（调用时取，不在 New 里固定）
	Logger *zap.Logger
	// Dispatcher 为空时新建一个；多个 Market 可以共享
	Dispatcher *Dispatcher
	// IDs 为空时新建；共享同一个分配器可以让多条连接的 id 不重复
	IDs *IDAllocator
}

// Market 一条交易所连接上的协议会话：
// 读侧由 ReceiveLoop 独占，写侧由 wmu 串行化，订单号分配与写锁无关。
type Market struct {
	r    *bufio.Reader
	w    *bufio.Writer
	wmu  sync.Mutex
	wbuf []byte // 受 wmu 保护

	ids  *IDAllocator
	disp *Dispatcher
	log  *zap.Logger

	running atomic.Bool
}

func New(src io.Reader, sink io.Writer, opt Options) *Market {
	m := &Market{
		r:    bufio.NewReaderSize(src, 32*1024),
		w:    bufio.NewWriterSize(sink, 4*1024),
		wbuf: make([]byte, 0, 128),
		ids:  opt.IDs,
		disp: opt.Dispatcher,
		log:  opt.Logger,
	}
	if m.ids == nil {
		m.ids = &IDAllocator{}
	}
	if m.disp == nil {
		m.disp = NewDispatcher()
	}
	return m
}

// logger 没有显式传入时每次取全局 logger，先建 Market 后 logger.Init 也能打出来
func (m *Market) logger() *zap.Logger {
	if m.log != nil {
		return m.log
	}
	return logger.L()
}

func (m *Market) Dispatcher() *Dispatcher { return m.disp }

func (m *Market) IDs() *IDAllocator { return m.ids }

// ReceiveLoop 阻塞读行直到行源结束。
//
// EOF 或者行源被外部 Close 属于正常结束，返回 nil；其他 I/O 错误返回 xerr.CodeStream，不重试。
// 单行解析失败/回调 panic 只记日志，不影响后续行。
// 没有内部取消机制：要停止就从外面关掉行源（比如 conn.Close()）。
func (m *Market) ReceiveLoop() error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.running.Store(false)

	for {
		line, err := m.r.ReadString('\n')
		// 最后一行没有换行也要处理
		if err == nil || (errors.Is(err, io.EOF) && line != "") {
			m.handleLine(trimEOL(line))
		}
		if err == nil {
			continue
		}
		if isEndOfStream(err) {
			m.logger().Info("venue stream closed")
			return nil
		}
		m.logger().Error("read from venue failed", zap.Error(err))
		return xerr.Wrap(xerr.CodeStream, "read line", err)
	}
}

func (m *Market) handleLine(line string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger().Error("handler panic while processing line",
				zap.String("line", line),
				zap.Any("panic", r),
			)
		}
	}()

	metrics.LinesInTotal.Inc()
	m.logger().Info("RECV", zap.String("line", line))

	msg, err := Decode(line)
	switch {
	case err != nil:
		metrics.DecodeErrorsTotal.Inc()
		m.logger().Error("decode failed", zap.String("line", line), zap.Error(err))
	case msg == nil:
		metrics.NoopTotal.Inc()
	default:
		metrics.OnEvent(msg.Kind().String())
		m.disp.Publish(msg)
	}
}

// Hello 发送固定的 "HELLO AMPERE"
func (m *Market) Hello() error {
	return m.send(HelloCmd{})
}

// Add 下限价单。size/price 为负时不发送，返回 InvalidID。
// 写失败时 id 已经分配（不会复用），连同错误一起返回。
func (m *Market) Add(symbol string, dir Direction, price, size int) (OrderID, error) {
	cmd := AddCmd{Symbol: symbol, Dir: dir, Price: price, Size: size}
	if err := cmd.Validate(); err != nil {
		m.rejectIntent(cmd, err)
		return InvalidID, err
	}
	cmd.ID = m.ids.Next()
	return cmd.ID, m.send(cmd)
}

// Convert size 为负时不发送，返回 InvalidID
func (m *Market) Convert(symbol string, dir Direction, size int) (OrderID, error) {
	cmd := ConvertCmd{Symbol: symbol, Dir: dir, Size: size}
	if err := cmd.Validate(); err != nil {
		m.rejectIntent(cmd, err)
		return InvalidID, err
	}
	cmd.ID = m.ids.Next()
	return cmd.ID, m.send(cmd)
}

// Cancel 不校验 id，也不分配 id
func (m *Market) Cancel(id OrderID) error {
	return m.send(CancelCmd{ID: id})
}

func (m *Market) rejectIntent(cmd Command, err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, ErrNegativeSize):
		reason = "negative_size"
	case errors.Is(err, ErrNegativePrice):
		reason = "negative_price"
	case errors.Is(err, ErrBadDirection):
		reason = "bad_direction"
	}
	metrics.OnRejectedIntent(cmd.Name(), reason)
	m.logger().Error(cmd.Name()+" rejected locally", zap.String("reason", reason), zap.Any("cmd", cmd))
}

// send 格式化 + 写 + 换行 + flush 是一个临界区，并发调用不会在字节层面交错
func (m *Market) send(cmd Command) error {
	m.wmu.Lock()
	start := time.Now()
	buf, err := AppendEncode(m.wbuf[:0], cmd)
	if err != nil {
		m.wmu.Unlock()
		return err
	}
	line := string(buf)
	buf = append(buf, '\n')
	m.wbuf = buf
	if _, err = m.w.Write(buf); err == nil {
		err = m.w.Flush()
	}
	m.wmu.Unlock()

	metrics.ObserveWrite(cmd.Name(), time.Since(start), err)
	if err != nil {
		m.logger().Error("write to venue failed", zap.String("line", line), zap.Error(err))
		return xerr.Wrap(xerr.CodeWrite, fmt.Sprintf("send %s", cmd.Name()), err)
	}
	m.logger().Info("SEND", zap.String("line", line))
	return nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
