package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger_Info_WithSessionID(t *testing.T) {
	// 劫持全局 Log 到内存 buffer
	buffer := &bytes.Buffer{}
	Log = New(zap.InfoLevel, buffer)
	defer func() { Log = nil }()

	ctx := WithSession(context.Background(), "sess-12345")
	Info(ctx, "RECV", zap.String("line", "ACK 1"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &logEntry), "日志输出必须是合法的 JSON")

	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "RECV", logEntry["msg"])
	assert.Equal(t, "ACK 1", logEntry["line"])
	assert.Equal(t, "sess-12345", logEntry[SessionIdKey], "session id 未能自动注入到日志中")
}

func TestLogger_Error_NoSessionID(t *testing.T) {
	buffer := &bytes.Buffer{}
	Log = New(zap.InfoLevel, buffer)
	defer func() { Log = nil }()

	Error(context.Background(), "decode failed", zap.String("line", "BOOK IBM"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &logEntry))

	_, exists := logEntry[SessionIdKey]
	assert.False(t, exists, "没有 session id 的 Context 不应该输出 session_id 字段")
	assert.Equal(t, "ERROR", logEntry["level"])
}

func TestLogger_LevelFilter(t *testing.T) {
	buffer := &bytes.Buffer{}
	Log = New(zap.WarnLevel, buffer)
	defer func() { Log = nil }()

	Info(context.Background(), "dropped")
	assert.Zero(t, buffer.Len())

	Warn(context.Background(), "kept")
	assert.Contains(t, buffer.String(), "kept")
}

func TestL_BeforeInit(t *testing.T) {
	Log = nil
	assert.NotPanics(t, func() {
		Info(nil, "nobody listens")
		L().Error("still nobody")
	})
}

func TestSetLevel_IgnoresGarbage(t *testing.T) {
	SetLevel("debug")
	assert.Equal(t, zap.DebugLevel, level.Level())
	SetLevel("loud")
	assert.Equal(t, zap.DebugLevel, level.Level())
	SetLevel("info")
}

func TestInitWithFile_WritesFileAndFollowsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ampere-client.log")
	InitWithFile("ampere-client", "warn", path)
	defer func() {
		Log = nil
		SetLevel("info")
	}()

	Info(context.Background(), "dropped")
	SetLevel("info")
	Info(WithSession(context.Background(), "s-1"), "kept")
	Sync()

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "dropped")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(body), &logEntry))
	assert.Equal(t, "kept", logEntry["msg"])
	assert.Equal(t, "ampere-client", logEntry["service"])
	assert.Equal(t, "s-1", logEntry[SessionIdKey])
}
