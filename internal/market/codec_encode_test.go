package market

import (
	"errors"
	"testing"

	"ampere.com/pkg/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		cmd  Command
		want string
	}{
		{HelloCmd{}, "HELLO AMPERE"},
		{AddCmd{ID: 1, Symbol: "ibm", Dir: Buy, Price: 100, Size: 5}, "ADD 1 IBM BUY 100 5"},
		{AddCmd{ID: 42, Symbol: "Vale", Dir: Sell, Price: 0, Size: 0}, "ADD 42 VALE SELL 0 0"},
		{ConvertCmd{ID: 7, Symbol: "valbz", Dir: Sell, Size: 3}, "CONVERT 7 VALBZ SELL 3"},
		{CancelCmd{ID: 9}, "CANCEL 9"},
		{CancelCmd{ID: -1}, "CANCEL -1"},
	}
	for _, c := range cases {
		got, err := Encode(c.cmd)
		require.NoError(t, err, c.want)
		assert.Equal(t, c.want, got)
	}
}

func TestEncode_Validation(t *testing.T) {
	_, err := Encode(AddCmd{ID: 1, Symbol: "IBM", Dir: Buy, Price: 100, Size: -1})
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = Encode(AddCmd{ID: 1, Symbol: "IBM", Dir: Buy, Price: -1, Size: 1})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = Encode(ConvertCmd{ID: 1, Symbol: "IBM", Dir: Buy, Size: -5})
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = Encode(AddCmd{ID: 1, Symbol: "IBM", Price: 1, Size: 1})
	assert.ErrorIs(t, err, ErrBadDirection)
	assert.True(t, xerr.Is(err, xerr.CodeValidation))
}

type bogusCmd struct{}

func (bogusCmd) Name() string    { return "BOGUS" }
func (bogusCmd) Validate() error { return nil }

func TestEncode_UnknownCommand(t *testing.T) {
	_, err := Encode(bogusCmd{})
	assert.True(t, errors.Is(err, ErrUnknownCmd))
}

func TestAppendEncode_ReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 64)
	buf, err := AppendEncode(buf, CancelCmd{ID: 1})
	require.NoError(t, err)
	buf, err = AppendEncode(buf[:0], CancelCmd{ID: 22})
	require.NoError(t, err)
	assert.Equal(t, "CANCEL 22", string(buf))
}

func TestEncodeDecode_FillDirection(t *testing.T) {
	// 出站方向渲染和入站方向解析用的是同一套 BUY/SELL
	line, err := Encode(AddCmd{ID: 5, Symbol: "bond", Dir: Sell, Price: 999, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, "ADD 5 BOND SELL 999 2", line)

	msg, err := Decode("FILL 5 BOND SELL 999 2")
	require.NoError(t, err)
	assert.Equal(t, Sell, msg.(Fill).Dir)
}
