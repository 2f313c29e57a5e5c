package client

import (
	"testing"

	"ampere.com/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestJournal_BookTopOfBook(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := market.NewDispatcher()
	detach := Journal(d, zap.New(core))

	msg, err := market.Decode("BOOK IBM BUY 99:3 100:5 SELL 102:7 101:2")
	require.NoError(t, err)
	d.Publish(msg)

	entries := logs.FilterMessage("book").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 100, fields["bid"])
	assert.EqualValues(t, 101, fields["ask"])

	detach()
	d.Publish(msg)
	assert.Equal(t, 1, logs.FilterMessage("book").Len())
}

func TestJournal_RejectAndFill(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := market.NewDispatcher()
	Journal(d, zap.New(core))

	d.Publish(market.Reject{ID: 4, Message: "no such symbol"})
	d.Publish(market.Fill{ID: 5, Symbol: "IBM", Dir: market.Sell, Price: 101, Size: 2})
	// debug 级别的 book 不落日志
	d.Publish(market.Book{Symbol: "IBM"})

	rejects := logs.FilterMessage("order rejected").All()
	require.Len(t, rejects, 1)
	assert.Equal(t, "4", rejects[0].ContextMap()["id"])
	fills := logs.FilterMessage("order filled").All()
	require.Len(t, fills, 1)
	assert.Equal(t, "SELL", fills[0].ContextMap()["dir"])
	assert.Zero(t, logs.FilterMessage("book").Len())
}
