package safe

import (
	"context"
	"fmt"
	"runtime/debug"

	"ampere.com/pkg/logger"
	"go.uber.org/zap"
)

// PanicError 协程 panic 后转成的错误，带上现场堆栈
type PanicError struct {
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("goroutine panic: %v", e.Value)
}

// GoCtx 安全启动携带 context 的协程，日志里保留 session 信息
func GoCtx(ctx context.Context, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer recoverAndLog(ctx)
		fn(ctx)
	}()
}

// GoErr 启动长驻 worker（比如接收循环），结束时把返回值投递到 channel；
// panic 也会被转成 *PanicError 投递，调用方只需要等这一个 channel
func GoErr(ctx context.Context, fn func() error) <-chan error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				pe := &PanicError{Value: r, Stack: string(debug.Stack())}
				logPanic(ctx, pe)
				done <- pe
			}
			close(done)
		}()
		done <- fn()
	}()
	return done
}

func recoverAndLog(ctx context.Context) {
	if r := recover(); r != nil {
		logPanic(ctx, &PanicError{Value: r, Stack: string(debug.Stack())})
	}
}

func logPanic(ctx context.Context, pe *PanicError) {
	// logger 未初始化时打印到标准输出
	if logger.Log != nil {
		logger.Error(ctx, "GOROUTINE PANIC RECOVERED",
			zap.Any("panic", pe.Value),
			zap.String("stack", pe.Stack),
		)
		return
	}
	fmt.Printf("GOROUTINE PANIC: %v\nStack: %s\n", pe.Value, pe.Stack)
}
