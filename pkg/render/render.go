// Package render 提供基于连通性状态的展示策略
//
// 三种策略组合在同一个监控器之上：
//   - WhenOnline 仅在线时输出内容
//   - WhenOffline 仅离线时输出内容
//   - Func 由调用方根据状态生成内容
package render

import (
	"io"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// Strategy 展示策略
type Strategy interface {
	// Render 根据状态向 w 写出内容，不满足条件时不写出任何内容
	Render(w io.Writer, state interfaces.ConnectivityState) error
}

// Querier 提供当前状态快照
type Querier interface {
	Query() interfaces.ConnectivityState
}

// StrategyFunc 函数适配器
type StrategyFunc func(w io.Writer, state interfaces.ConnectivityState) error

// Render 实现 Strategy
func (f StrategyFunc) Render(w io.Writer, state interfaces.ConnectivityState) error {
	return f(w, state)
}

// WhenOnline 在线时输出 content
func WhenOnline(content string) Strategy {
	return when(true, content)
}

// WhenOffline 离线时输出 content
func WhenOffline(content string) Strategy {
	return when(false, content)
}

func when(online bool, content string) Strategy {
	return StrategyFunc(func(w io.Writer, state interfaces.ConnectivityState) error {
		if state.Online != online || content == "" {
			return nil
		}
		_, err := io.WriteString(w, content)
		return err
	})
}

// Func 由 fn 根据状态生成内容，fn 为 nil 时不输出
func Func(fn func(online bool) string) Strategy {
	return StrategyFunc(func(w io.Writer, state interfaces.ConnectivityState) error {
		if fn == nil {
			return nil
		}
		content := fn(state.Online)
		if content == "" {
			return nil
		}
		_, err := io.WriteString(w, content)
		return err
	})
}

// Compose 依次执行多个策略，遇到错误立即返回
func Compose(strategies ...Strategy) Strategy {
	return StrategyFunc(func(w io.Writer, state interfaces.ConnectivityState) error {
		for _, s := range strategies {
			if s == nil {
				continue
			}
			if err := s.Render(w, state); err != nil {
				return err
			}
		}
		return nil
	})
}

// To 以 q 的当前快照执行策略
func To(w io.Writer, q Querier, s Strategy) error {
	return s.Render(w, q.Query())
}
