package market

import (
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels_SortedLastWriteWins(t *testing.T) {
	var l Levels
	l.Set(100, 5)
	l.Set(98, 1)
	l.Set(99, 3)
	l.Set(100, 8)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []Level{{98, 1}, {99, 3}, {100, 8}}, l.All())

	q, ok := l.Get(99)
	assert.True(t, ok)
	assert.Equal(t, 3, q)
	_, ok = l.Get(97)
	assert.False(t, ok)

	lo, _ := l.Min()
	hi, _ := l.Max()
	assert.Equal(t, 98, lo.Price)
	assert.Equal(t, 100, hi.Price)
}

func TestLevels_Empty(t *testing.T) {
	var l Levels
	_, ok := l.Min()
	assert.False(t, ok)
	_, ok = l.Max()
	assert.False(t, ok)
	assert.Empty(t, l.All())
}

func TestLevels_AllIsACopy(t *testing.T) {
	var l Levels
	l.Set(1, 1)
	all := l.All()
	all[0].Qty = 99
	q, _ := l.Get(1)
	assert.Equal(t, 1, q)
}

func TestLevels_JSON(t *testing.T) {
	book := Book{Symbol: "IBM"}
	book.Buys.Set(100, 5)
	book.Buys.Set(99, 3)

	b, err := json.Marshal(book)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"IBM","buys":[[99,3],[100,5]],"sells":[]}`, string(b))
}
