package market

import (
	"strconv"
	"strings"

	"ampere.com/pkg/xerr"
)

const errorPrefixLen = len("ERROR ")

// DecodeError 入站行格式错误；只影响这一行，接收循环继续
type DecodeError struct {
	Line   string
	Reason string
	err    error
}

func newDecodeError(line, reason string, cause error) *DecodeError {
	return &DecodeError{
		Line:   line,
		Reason: reason,
		err:    xerr.Wrap(xerr.CodeDecode, reason, cause),
	}
}

func (e *DecodeError) Error() string {
	return "decode " + strconv.Quote(e.Line) + ": " + e.err.Error()
}

func (e *DecodeError) Unwrap() error { return e.err }

// Decode 把一行协议文本解析成事件。
//
// 返回值三种情况：
//   - (msg, nil)  识别的消息
//   - (nil, nil)  NoOp：首 token 不认识，静默忽略（不是错误）
//   - (nil, *DecodeError) 字段缺失/非整数/BOOK 标记不对
//
// 消息类型大小写不敏感；方向和 BOOK 的 BUY 标记大小写敏感，SELL 标记不敏感。
func Decode(line string) (Message, error) {
	d := decoder{line: line, toks: strings.Split(line, " ")}

	switch strings.ToUpper(d.toks[0]) {
	case "HELLO":
		return d.hello()
	case "OPEN":
		return Open{Symbols: d.rest(1)}, nil
	case "CLOSE":
		return Close{Symbols: d.rest(1)}, nil
	case "ERROR":
		// 按原始行截取，保留文本里的连续空格；REJECT 则是 token 重新拼接
		msg := ""
		if len(line) > errorPrefixLen {
			msg = line[errorPrefixLen:]
		}
		return Error{Message: msg}, nil
	case "BOOK":
		return d.book()
	case "TRADE":
		return d.trade()
	case "ACK":
		id, err := d.id(1)
		if err != nil {
			return nil, err
		}
		return Ack{ID: id}, nil
	case "OUT":
		id, err := d.id(1)
		if err != nil {
			return nil, err
		}
		return Out{ID: id}, nil
	case "REJECT":
		id, err := d.id(1)
		if err != nil {
			return nil, err
		}
		return Reject{ID: id, Message: strings.Join(d.rest(2), " ")}, nil
	case "FILL":
		return d.fill()
	}
	return nil, nil
}

type decoder struct {
	line string
	toks []string
}

func (d *decoder) fail(reason string, cause error) error {
	return newDecodeError(d.line, reason, cause)
}

func (d *decoder) tok(i int, field string) (string, error) {
	if i >= len(d.toks) {
		return "", d.fail("missing "+field+" at token "+strconv.Itoa(i), nil)
	}
	return d.toks[i], nil
}

func (d *decoder) num(i int, field string) (int, error) {
	s, err := d.tok(i, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.fail("bad "+field+" "+strconv.Quote(s), err)
	}
	return n, nil
}

func (d *decoder) id(i int) (OrderID, error) {
	n, err := d.num(i, "id")
	return OrderID(n), err
}

// rest tokens[i:]，不足时返回空切片
func (d *decoder) rest(i int) []string {
	if i >= len(d.toks) {
		return []string{}
	}
	return append([]string(nil), d.toks[i:]...)
}

// pair 解析 "a:b"，必须恰好一个冒号
func (d *decoder) pair(s, field string) (string, string, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(b, ":") {
		return "", "", d.fail("bad "+field+" "+strconv.Quote(s), nil)
	}
	return a, b, nil
}

func (d *decoder) level(s string) (int, int, error) {
	ps, qs, err := d.pair(s, "price:qty")
	if err != nil {
		return 0, 0, err
	}
	price, err := strconv.Atoi(ps)
	if err != nil {
		return 0, 0, d.fail("bad price "+strconv.Quote(ps), err)
	}
	qty, err := strconv.Atoi(qs)
	if err != nil {
		return 0, 0, d.fail("bad qty "+strconv.Quote(qs), err)
	}
	return price, qty, nil
}

func (d *decoder) hello() (Message, error) {
	cash, err := d.num(1, "cash")
	if err != nil {
		return nil, err
	}
	msg := Hello{Cash: cash, Positions: make(map[string]int, len(d.toks))}
	for _, t := range d.rest(2) {
		sym, ps, err := d.pair(t, "symbol:position")
		if err != nil {
			return nil, err
		}
		pos, err := strconv.Atoi(ps)
		if err != nil {
			return nil, d.fail("bad position "+strconv.Quote(ps), err)
		}
		msg.Positions[sym] = pos
	}
	return msg, nil
}

func (d *decoder) book() (Message, error) {
	sym, err := d.tok(1, "symbol")
	if err != nil {
		return nil, err
	}
	marker, err := d.tok(2, "BUY marker")
	if err != nil {
		return nil, err
	}
	if marker != "BUY" {
		return nil, d.fail("expected BUY marker, got "+strconv.Quote(marker), nil)
	}

	msg := Book{Symbol: sym}
	i := 3
	for ; i < len(d.toks); i++ {
		if strings.EqualFold(d.toks[i], "SELL") {
			break
		}
		price, qty, err := d.level(d.toks[i])
		if err != nil {
			return nil, err
		}
		msg.Buys.Set(price, qty)
	}
	// 没有 SELL 标记直接失败，不往后读
	if i >= len(d.toks) {
		return nil, d.fail("missing SELL marker", nil)
	}
	for i++; i < len(d.toks); i++ {
		price, qty, err := d.level(d.toks[i])
		if err != nil {
			return nil, err
		}
		msg.Sells.Set(price, qty)
	}
	return msg, nil
}

func (d *decoder) trade() (Message, error) {
	sym, err := d.tok(1, "symbol")
	if err != nil {
		return nil, err
	}
	price, err := d.num(2, "price")
	if err != nil {
		return nil, err
	}
	size, err := d.num(3, "size")
	if err != nil {
		return nil, err
	}
	return Trade{Symbol: sym, Price: price, Size: size}, nil
}

func (d *decoder) fill() (Message, error) {
	id, err := d.id(1)
	if err != nil {
		return nil, err
	}
	sym, err := d.tok(2, "symbol")
	if err != nil {
		return nil, err
	}
	ds, err := d.tok(3, "direction")
	if err != nil {
		return nil, err
	}
	dir, err := ParseDirection(ds)
	if err != nil {
		return nil, d.fail("bad direction "+strconv.Quote(ds), err)
	}
	price, err := d.num(4, "price")
	if err != nil {
		return nil, err
	}
	size, err := d.num(5, "size")
	if err != nil {
		return nil, err
	}
	return Fill{ID: id, Symbol: sym, Dir: dir, Price: price, Size: size}, nil
}
