package market

import "strconv"

// OrderID 客户端分配的订单号，从 1 开始单调递增，永不复用
type OrderID int64

// InvalidID 校验失败时返回的哨兵值
const InvalidID OrderID = 0

func (id OrderID) String() string { return strconv.FormatInt(int64(id), 10) }

type Kind uint8

const (
	KindHello Kind = iota + 1
	KindOpen
	KindClose
	KindError
	KindBook
	KindTrade
	KindAck
	KindReject
	KindFill
	KindOut
)

// Kinds 全部消息种类，按协议表顺序
var Kinds = []Kind{KindHello, KindOpen, KindClose, KindError, KindBook, KindTrade, KindAck, KindReject, KindFill, KindOut}

var kindNames = [...]string{
	KindHello:  "HELLO",
	KindOpen:   "OPEN",
	KindClose:  "CLOSE",
	KindError:  "ERROR",
	KindBook:   "BOOK",
	KindTrade:  "TRADE",
	KindAck:    "ACK",
	KindReject: "REJECT",
	KindFill:   "FILL",
	KindOut:    "OUT",
}

func (k Kind) String() string {
	if k >= KindHello && k <= KindOut {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Message 入站事件，由首个 token 区分的十种变体之一
type Message interface {
	Kind() Kind
}

type Hello struct {
	Cash      int            `json:"cash"`
	Positions map[string]int `json:"positions"` // symbol -> position
}

type Open struct {
	Symbols []string `json:"symbols"`
}

type Close struct {
	Symbols []string `json:"symbols"`
}

type Error struct {
	Message string `json:"message"`
}

type Book struct {
	Symbol string `json:"symbol"`
	Buys   Levels `json:"buys"`
	Sells  Levels `json:"sells"`
}

type Trade struct {
	Symbol string `json:"symbol"`
	Price  int    `json:"price"`
	Size   int    `json:"size"`
}

type Ack struct {
	ID OrderID `json:"id"`
}

type Reject struct {
	ID      OrderID `json:"id"`
	Message string  `json:"message"`
}

type Fill struct {
	ID     OrderID   `json:"id"`
	Symbol string    `json:"symbol"`
	Dir    Direction `json:"dir"`
	Price  int       `json:"price"`
	Size   int       `json:"size"`
}

type Out struct {
	ID OrderID `json:"id"`
}

func (Hello) Kind() Kind  { return KindHello }
func (Open) Kind() Kind   { return KindOpen }
func (Close) Kind() Kind  { return KindClose }
func (Error) Kind() Kind  { return KindError }
func (Book) Kind() Kind   { return KindBook }
func (Trade) Kind() Kind  { return KindTrade }
func (Ack) Kind() Kind    { return KindAck }
func (Reject) Kind() Kind { return KindReject }
func (Fill) Kind() Kind   { return KindFill }
func (Out) Kind() Kind    { return KindOut }
