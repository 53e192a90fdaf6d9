package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

const (
	wsWriteTimeout = 5 * time.Second

	messageSnapshot = "snapshot"
	messageChange   = "change"
)

// upgrader 只接受同源或无 Origin 的连接
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// Message WebSocket 推送消息
type Message struct {
	// Type 为 "snapshot" 或 "change"
	Type string `json:"type"`

	Online    bool      `json:"online"`
	Previous  *bool     `json:"previous,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func snapshotMessage(state interfaces.ConnectivityState) Message {
	return Message{
		Type:      messageSnapshot,
		Online:    state.Online,
		Timestamp: time.Now(),
	}
}

func changeMessage(change interfaces.ConnectivityChange) Message {
	previous := change.Previous
	return Message{
		Type:      messageChange,
		Online:    change.Current,
		Previous:  &previous,
		Reason:    change.Reason.String(),
		Timestamp: change.Timestamp,
	}
}

// handleWS 推送状态快照与后续变更
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	done := s.done
	if done != nil && !s.running {
		s.mu.Unlock()
		http.Error(w, "Server stopping", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "error", err)
		return
	}
	defer conn.Close()

	connLog := logger.With("remote", r.RemoteAddr)
	connLog.Debug("WebSocket 已连接")
	defer connLog.Debug("WebSocket 已断开")

	monitor := s.config.Monitor
	changes := monitor.Subscribe()
	defer monitor.Unsubscribe(changes)

	if err := writeMessage(conn, snapshotMessage(monitor.Query())); err != nil {
		connLog.Debug("写入快照失败", "error", err)
		return
	}

	// 读循环只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				closeConn(conn, "monitor stopped")
				return
			}
			if err := writeMessage(conn, changeMessage(change)); err != nil {
				connLog.Debug("写入状态变更失败", "error", err)
				return
			}
		case <-done:
			closeConn(conn, "server shutting down")
			return
		case <-closed:
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}

func closeConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
}
