package xerr

import (
	"errors"
	"fmt"
)

// 协议层错误码
const (
	CodeValidation = 400 // 本地参数校验失败（负数 size/price 等），命令不会发出
	CodeDecode     = 422 // 入站行格式错误，丢弃该行
	CodeStream     = 502 // 行源 I/O 故障，接收循环退出
	CodeWrite      = 503 // 行汇写入/flush 失败
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Err  error  `json:"-"`
}

func (e *CodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ErrCode:%d, Msg:%s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) Unwrap() error { return e.Err }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

// Wrap 带上底层原因
func Wrap(code int, msg string, err error) error {
	return &CodeError{Code: code, Msg: msg, Err: err}
}

// Is 沿着 wrap 链查找指定错误码
func Is(err error, code int) bool {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// CodeOf 取错误码，非 CodeError 返回 0
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// MapErrMsg 错误码对应的人话，进程退出日志里用
func MapErrMsg(code int) string {
	switch code {
	case CodeValidation:
		return "invalid command"
	case CodeDecode:
		return "malformed line"
	case CodeStream:
		return "line source failed"
	case CodeWrite:
		return "line sink failed"
	default:
		return "unknown error"
	}
}
