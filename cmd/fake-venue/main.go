package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ampere.com/internal/venue"
	"ampere.com/pkg/logger"
	"go.uber.org/zap"
)

// 本地联调用的假交易所：
//
//	go run ./cmd/fake-venue -addr 127.0.0.1:20000 -symbols IBM,MSFT
func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:20000", "listen address")
	cash := flag.String("cash", "1000", "cash reported in HELLO")
	symbols := flag.String("symbols", "IBM", "comma separated open symbols")
	auto := flag.Bool("auto", true, "ACK adds/converts and OUT cancels")
	level := flag.String("log", "debug", "log level")
	flag.Parse()

	logger.Init("fake-venue", *level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syms := strings.Split(*symbols, ",")
	hello := "HELLO " + *cash
	for _, s := range syms {
		hello += " " + s + ":0"
	}

	v, err := venue.Listen(*addr, venue.FakeOptions{
		Logger:    logger.L(),
		Greeting:  []string{hello, "OPEN " + strings.Join(syms, " ")},
		AutoReply: *auto,
	})
	if err != nil {
		logger.Error(ctx, "listen failed", zap.String("addr", *addr), zap.Error(err))
		return 1
	}
	logger.Info(ctx, "fake venue listening", zap.String("addr", v.Addr()))

	if err := v.Serve(ctx); err != nil {
		logger.Error(ctx, "serve failed", zap.Error(err))
		return 1
	}
	return 0
}
