package market

import (
	"strconv"
	"strings"

	"ampere.com/pkg/xerr"
)

const helloLine = "HELLO AMPERE"

var (
	ErrNegativeSize  = xerr.New(xerr.CodeValidation, "negative size")
	ErrNegativePrice = xerr.New(xerr.CodeValidation, "negative price")
	ErrBadDirection  = xerr.New(xerr.CodeValidation, "direction must be BUY or SELL")
	ErrUnknownCmd    = xerr.New(xerr.CodeValidation, "unknown command")
)

// Command 出站命令
type Command interface {
	Name() string
	Validate() error
}

type HelloCmd struct{}

type AddCmd struct {
	ID     OrderID
	Symbol string
	Dir    Direction
	Price  int
	Size   int
}

type ConvertCmd struct {
	ID     OrderID
	Symbol string
	Dir    Direction
	Size   int
}

// CancelCmd 不做任何校验，id 是否存在由交易所判断
type CancelCmd struct {
	ID OrderID
}

func (HelloCmd) Name() string   { return "HELLO" }
func (AddCmd) Name() string     { return "ADD" }
func (ConvertCmd) Name() string { return "CONVERT" }
func (CancelCmd) Name() string  { return "CANCEL" }

func (HelloCmd) Validate() error  { return nil }
func (CancelCmd) Validate() error { return nil }

func (c AddCmd) Validate() error {
	if c.Size < 0 {
		return ErrNegativeSize
	}
	if c.Price < 0 {
		return ErrNegativePrice
	}
	if !c.Dir.Valid() {
		return ErrBadDirection
	}
	return nil
}

func (c ConvertCmd) Validate() error {
	if c.Size < 0 {
		return ErrNegativeSize
	}
	if !c.Dir.Valid() {
		return ErrBadDirection
	}
	return nil
}

// AppendEncode 把命令追加到 dst（不含换行），复用调用方的 buffer
func AppendEncode(dst []byte, cmd Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return dst, err
	}
	switch c := cmd.(type) {
	case HelloCmd:
		dst = append(dst, helloLine...)
	case AddCmd:
		// ADD <id> <SYMBOL> <BUY|SELL> <price> <size>
		dst = append(dst, "ADD "...)
		dst = strconv.AppendInt(dst, int64(c.ID), 10)
		dst = append(dst, ' ')
		dst = append(dst, strings.ToUpper(c.Symbol)...)
		dst = append(dst, ' ')
		dst = append(dst, c.Dir.String()...)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(c.Price), 10)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(c.Size), 10)
	case ConvertCmd:
		// CONVERT <id> <SYMBOL> <BUY|SELL> <size>
		dst = append(dst, "CONVERT "...)
		dst = strconv.AppendInt(dst, int64(c.ID), 10)
		dst = append(dst, ' ')
		dst = append(dst, strings.ToUpper(c.Symbol)...)
		dst = append(dst, ' ')
		dst = append(dst, c.Dir.String()...)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(c.Size), 10)
	case CancelCmd:
		dst = append(dst, "CANCEL "...)
		dst = strconv.AppendInt(dst, int64(c.ID), 10)
	default:
		return dst, ErrUnknownCmd
	}
	return dst, nil
}

// Encode 渲染成一行文本（不含换行）
func Encode(cmd Command) (string, error) {
	b, err := AppendEncode(make([]byte, 0, 64), cmd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
