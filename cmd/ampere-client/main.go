package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ampere.com/internal/client"
	"ampere.com/internal/relay"
	"ampere.com/internal/venue"
	"ampere.com/pkg/config"
	"ampere.com/pkg/logger"
	"ampere.com/pkg/xerr"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	// os.Exit 会跳过 defer，所有清理都放在 run 里
	os.Exit(run())
}

func run() int {
	cfgFile := flag.String("f", "", "config file (default config/ampere-client.yaml)")
	replay := flag.String("replay", "", "feed a captured venue line file through the receive loop and exit")
	tail := flag.String("tail", "", "comma separated relay topics to print from NATS, e.g. ampere:fill:*")
	flag.Parse()

	// ========= 0) 信号：收到 SIGINT/SIGTERM 取消 ctx，Run 里会关连接 =========
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========= 1) 配置 & 日志 =========
	// 配置没读出来之前先用默认级别打到控制台
	logger.Init(client.ServiceName, "info")
	defer logger.Sync()

	cfg := &client.Config{}
	_, err := config.Load(client.ServiceName, cfg, config.Options{
		File:     *cfgFile,
		Defaults: client.Defaults(),
		OnChange: func() { logger.SetLevel(cfg.Log.Level) },
	})
	if err != nil {
		logger.Error(ctx, "初始化配置出错", zap.Error(err))
		return 1
	}
	logger.InitWithFile(cfg.Name, cfg.Log.Level, cfg.Log.File)

	// 每条连接一个 session id，日志靠它串起来
	sessionID := uuid.NewString()
	ctx = logger.WithSession(ctx, sessionID)
	log := logger.L().With(zap.String(logger.SessionIdKey, sessionID))

	// ========= 2) 事件转发（可选） =========
	opt := client.RunOptions{
		Logger:      log,
		Prefix:      cfg.Nats.Prefix,
		MetricsAddr: cfg.Metrics.Addr,
		CaptureFile: cfg.Capture.File,
	}
	if cfg.Nats.URL != "" {
		b, err := relay.NewNatsBroker(cfg.Nats.URL, nats.Name(cfg.Name))
		if err != nil {
			logger.Error(ctx, "connect nats failed", zap.String("url", cfg.Nats.URL), zap.Error(err))
			return 1
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Warn(ctx, "nats drain failed", zap.Error(err))
			}
		}()
		opt.Broker = b
		logger.Info(ctx, "relaying events", zap.String("nats", cfg.Nats.URL), zap.String("prefix", cfg.Nats.Prefix))
	}

	// ========= 3) 只看事件：订阅 relay topic 打到标准输出 =========
	if *tail != "" {
		if opt.Broker == nil {
			logger.Error(ctx, "-tail needs nats.url")
			return 1
		}
		topics := strings.Split(*tail, ",")
		n, err := client.Tail(ctx, opt.Broker, topics, os.Stdout)
		if err != nil {
			logger.Error(ctx, "tail failed", zap.Strings("topics", topics), zap.Error(err))
			return 1
		}
		logger.Info(ctx, "tail stopped", zap.Int("events", n))
		return 0
	}

	// ========= 4) 回放模式 =========
	if *replay != "" {
		opt.MetricsAddr, opt.CaptureFile = "", ""
		n, err := client.Replay(ctx, *replay, opt)
		if err != nil {
			logger.Error(ctx, "replay failed", zap.String("file", *replay), zap.Error(err))
			return client.ExitCode(err)
		}
		logger.Info(ctx, "replay done", zap.String("file", *replay), zap.Int("events", n))
		return 0
	}

	// ========= 5) 连交易所 & 跑会话 =========
	conn, err := venue.Dial(ctx, cfg.Venue.Addr, cfg.Venue.DialTimeout)
	if err != nil {
		logger.Error(ctx, "dial venue failed", zap.String("addr", cfg.Venue.Addr), zap.Error(err))
		return client.ExitCode(err)
	}
	logger.Info(ctx, "connected to venue", zap.String("addr", cfg.Venue.Addr))

	if err := client.Run(ctx, conn, opt); err != nil {
		code := xerr.CodeOf(err)
		logger.Error(ctx, "session ended with error",
			zap.Int("code", code),
			zap.String("reason", xerr.MapErrMsg(code)),
			zap.Error(err),
		)
		return client.ExitCode(err)
	}
	logger.Info(ctx, "session stopped")
	return 0
}
