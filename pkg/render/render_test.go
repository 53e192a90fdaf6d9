package render

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

type staticQuerier bool

func (q staticQuerier) Query() interfaces.ConnectivityState {
	return interfaces.ConnectivityState{Online: bool(q)}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// TestStrategies 各策略按状态输出
func TestStrategies(t *testing.T) {
	custom := Func(func(online bool) string { return fmt.Sprintf("online=%t", online) })

	tests := []struct {
		name     string
		strategy Strategy
		online   bool
		want     string
	}{
		{"在线策略-在线", WhenOnline("up"), true, "up"},
		{"在线策略-离线", WhenOnline("up"), false, ""},
		{"离线策略-离线", WhenOffline("down"), false, "down"},
		{"离线策略-在线", WhenOffline("down"), true, ""},
		{"自定义-在线", custom, true, "online=true"},
		{"自定义-离线", custom, false, "online=false"},
		{"自定义-nil", Func(nil), true, ""},
		{"组合", Compose(WhenOnline("up"), WhenOffline("down"), nil), false, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, To(&buf, staticQuerier(tt.online), tt.strategy))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// TestStrategies_WriteError 写出错误原样返回
func TestStrategies_WriteError(t *testing.T) {
	state := interfaces.ConnectivityState{Online: true}

	assert.Error(t, WhenOnline("up").Render(failingWriter{}, state))
	assert.Error(t, Compose(WhenOnline("up"), WhenOnline("again")).Render(failingWriter{}, state))
	assert.NoError(t, WhenOffline("down").Render(failingWriter{}, state), "不满足条件时不写出")
}
