package market

import (
	"slices"
	"strconv"
)

// Level 一个价位：price -> quantity
type Level struct {
	Price int
	Qty   int
}

// Levels 价位表，按 price 升序；同价位后写覆盖前写。
// 买卖两侧都是升序，买盘不会被倒成 best-first，需要最优价用 Max/Min。
type Levels struct {
	lv []Level
}

func (l *Levels) Set(price, qty int) {
	i, found := slices.BinarySearchFunc(l.lv, price, cmpPrice)
	if found {
		l.lv[i].Qty = qty
		return
	}
	l.lv = slices.Insert(l.lv, i, Level{Price: price, Qty: qty})
}

func (l Levels) Get(price int) (int, bool) {
	i, found := slices.BinarySearchFunc(l.lv, price, cmpPrice)
	if !found {
		return 0, false
	}
	return l.lv[i].Qty, true
}

func (l Levels) Len() int { return len(l.lv) }

// All 升序拷贝，调用方随便改
func (l Levels) All() []Level {
	return slices.Clone(l.lv)
}

// Min 最低价位（卖盘的最优价）
func (l Levels) Min() (Level, bool) {
	if len(l.lv) == 0 {
		return Level{}, false
	}
	return l.lv[0], true
}

// Max 最高价位（买盘的最优价）
func (l Levels) Max() (Level, bool) {
	if len(l.lv) == 0 {
		return Level{}, false
	}
	return l.lv[len(l.lv)-1], true
}

// MarshalJSON: [[price,qty],...]，升序
func (l Levels) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(l.lv)*12)
	buf = append(buf, '[')
	for i, lv := range l.lv {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '[')
		buf = strconv.AppendInt(buf, int64(lv.Price), 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(lv.Qty), 10)
		buf = append(buf, ']')
	}
	buf = append(buf, ']')
	return buf, nil
}

func cmpPrice(lv Level, price int) int {
	switch {
	case lv.Price < price:
		return -1
	case lv.Price > price:
		return 1
	}
	return 0
}
