package relay

import (
	"strings"

	"ampere.com/internal/market"
	"github.com/segmentio/encoding/json"
)

type event struct {
	Kind string         `json:"kind"`
	Data market.Message `json:"data"`
}

// Topic <prefix>:<kind>，带 symbol 的行情/成交再加一段 :<SYMBOL>（见 topicSymbol）
func Topic(prefix string, msg market.Message) string {
	kind := strings.ToLower(msg.Kind().String())
	var sym string
	switch v := msg.(type) {
	case market.Book:
		sym = v.Symbol
	case market.Trade:
		sym = v.Symbol
	case market.Fill:
		sym = v.Symbol
	}
	if sym == "" {
		return prefix + ":" + kind
	}
	return prefix + ":" + kind + ":" + topicSymbol(sym)
}

// symbol 是交易所给的原始字符串：'.'/':' 会多切出一段 subject，'*'/'>' 会变成 NATS 通配符，
// 空白在 subject 里非法，统一换成 '_'
var symbolReplacer = strings.NewReplacer(".", "_", ":", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

func topicSymbol(sym string) string {
	return symbolReplacer.Replace(strings.ToUpper(sym))
}

// Encode 返回 topic 和 {"kind":"BOOK","data":{...}}
func Encode(prefix string, msg market.Message) (string, []byte, error) {
	buf, err := json.Marshal(event{Kind: msg.Kind().String(), Data: msg})
	if err != nil {
		return "", nil, err
	}
	return Topic(prefix, msg), buf, nil
}
