package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"ampere.com/internal/market"
	"ampere.com/internal/relay"
	"ampere.com/pkg/capture"
	"ampere.com/pkg/safe"
	"ampere.com/pkg/xerr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RunOptions struct {
	Logger *zap.Logger
	// Broker 不为空时把所有入站事件转发出去
	Broker relay.Broker
	Prefix string
	// MetricsAddr 不为空时起 /metrics
	MetricsAddr string
	// CaptureFile 不为空时录下入站原始流
	CaptureFile string
	// OnReady 在 HELLO 发出之后调用，策略代码从这里拿到 Market
	OnReady func(ctx context.Context, m *market.Market)
}

// Run 跑一条交易所连接，直到 ctx 结束或者交易所断开。
// 停止方式就是关连接：接收循环读到 EOF/ErrClosed 后正常返回。
func Run(ctx context.Context, conn io.ReadWriteCloser, opt RunOptions) error {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var src io.Reader = conn
	if opt.CaptureFile != "" {
		cw, err := capture.OpenWrite(opt.CaptureFile, 0)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer func() {
			if err := cw.Close(); err != nil {
				log.Warn("close capture file failed", zap.Error(err))
				return
			}
			log.Info("capture closed", zap.String("file", opt.CaptureFile), zap.Int64("bytes", cw.Offset()))
		}()
		src = io.TeeReader(conn, cw)
		log.Info("capturing venue stream", zap.String("file", opt.CaptureFile))
	}

	// 先占端口，失败时还没起任何协程，capture 由 defer 关
	var metricsLn net.Listener
	if opt.MetricsAddr != "" {
		ln, err := net.Listen("tcp", opt.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen metrics: %w", err)
		}
		metricsLn = ln
	}

	m := market.New(src, conn, market.Options{Logger: log})
	Journal(m.Dispatcher(), log)

	if opt.Broker != nil {
		detach := relay.New(opt.Broker, opt.Prefix, log).Attach(ctx, m.Dispatcher())
		defer detach()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// 交易所先断开也要让其他协程退出
		defer cancel()
		err := <-safe.GoErr(gctx, m.ReceiveLoop)
		if err != nil {
			log.Error("receive loop stopped", zap.Error(err))
			return err
		}
		log.Info("session ended", zap.Stringer("last_order_id", m.IDs().Last()))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// 可能已经被对端关掉了，错误不用管
		_ = conn.Close()
		return nil
	})
	if metricsLn != nil {
		g.Go(func() error { return ServeMetrics(gctx, metricsLn, log) })
	}

	if err := m.Hello(); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	if opt.OnReady != nil {
		opt.OnReady(gctx, m)
	}

	return g.Wait()
}

// ServeMetrics 在 ln 上起 prometheus 端点，ctx 结束时优雅关闭
func ServeMetrics(ctx context.Context, ln net.Listener, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	safe.GoCtx(ctx, func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	log.Info("metrics listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ExitCode 进程退出码：0 正常，2 行源断开，3 写失败，1 其他
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch xerr.CodeOf(err) {
	case xerr.CodeStream:
		return 2
	case xerr.CodeWrite:
		return 3
	default:
		return 1
	}
}
