package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogBufferWraps(t *testing.T) {
	b := NewLogBuffer(3)
	assert.Empty(t, b.Entries())

	for i := 1; i <= 5; i++ {
		b.AddEntry(HTTPLogEntry{Status: 200 + i})
	}

	entries := b.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, []int{203, 204, 205}, []int{entries[0].Status, entries[1].Status, entries[2].Status})
}

func TestLogHTTPRequestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	LogHTTPRequest(HTTPLogEntry{Method: "GET", Path: "/v1/tilt", Status: 200})
	LogHTTPRequest(HTTPLogEntry{Method: "POST", Path: "/v1/shading", Status: 400, Error: "invalid input"})
	LogHTTPRequest(HTTPLogEntry{Method: "GET", Path: "/v1/sites/x/report", Status: 500, Error: "boom"})

	all := logs.All()
	assert.Len(t, all, 3)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	assert.Equal(t, zapcore.DebugLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)

	last := GetHTTPLogBuffer().Entries()
	assert.GreaterOrEqual(t, len(last), 3)
	assert.Equal(t, "/v1/sites/x/report", last[len(last)-1].Path)
}
