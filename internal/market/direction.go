package market

import (
	"errors"
	"strconv"
)

type Direction uint8

const (
	Buy Direction = iota + 1
	Sell

	directionBuyStr  = "BUY"
	directionSellStr = "SELL"
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return directionBuyStr
	case Sell:
		return directionSellStr
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// ParseDirection 精确匹配（大小写敏感），"buy" 不是合法方向
func ParseDirection(s string) (Direction, error) {
	switch s {
	case directionBuyStr:
		return Buy, nil
	case directionSellStr:
		return Sell, nil
	}
	return 0, errors.New("unsupported direction: " + s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.New("invalid direction text conversion: " + strconv.Itoa(int(d)))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(data []byte) error {
	v, err := ParseDirection(string(data))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
