package client

import (
	"ampere.com/internal/market"
	"go.uber.org/zap"
)

// Journal 把账户相关的事件记到日志里（行情太多，只在 debug 打）
func Journal(d *market.Dispatcher, log *zap.Logger) (detach func()) {
	unsubs := []func(){
		market.On(d, func(h market.Hello) {
			log.Info("session opened", zap.Int("cash", h.Cash), zap.Any("positions", h.Positions))
		}),
		market.On(d, func(o market.Open) {
			log.Info("symbols open", zap.Strings("symbols", o.Symbols))
		}),
		market.On(d, func(c market.Close) {
			log.Info("symbols closed", zap.Strings("symbols", c.Symbols))
		}),
		market.On(d, func(e market.Error) {
			log.Warn("venue error", zap.String("message", e.Message))
		}),
		market.On(d, func(r market.Reject) {
			log.Warn("order rejected", zap.Stringer("id", r.ID), zap.String("message", r.Message))
		}),
		market.On(d, func(f market.Fill) {
			log.Info("order filled",
				zap.Stringer("id", f.ID),
				zap.String("symbol", f.Symbol),
				zap.Stringer("dir", f.Dir),
				zap.Int("price", f.Price),
				zap.Int("size", f.Size),
			)
		}),
		market.On(d, func(b market.Book) {
			if ce := log.Check(zap.DebugLevel, "book"); ce != nil {
				bid, _ := b.Buys.Max()
				ask, _ := b.Sells.Min()
				ce.Write(
					zap.String("symbol", b.Symbol),
					zap.Int("bid", bid.Price),
					zap.Int("ask", ask.Price),
					zap.Int("buys", b.Buys.Len()),
					zap.Int("sells", b.Sells.Len()),
				)
			}
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
