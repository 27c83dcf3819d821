package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	apperrors "github.com/kapu/name-bender-go/pkg/errors"
)

// Frame types sent on the check-all stream.
const (
	frameProgress = "progress"
	frameResult   = "result"
	frameError    = "error"
)

type sweepFrame struct {
	Type     string                `json:"type"`
	Progress *domain.SweepProgress `json:"progress,omitempty"`
	Result   *domain.SweepResult   `json:"result,omitempty"`
	Message  string                `json:"message,omitempty"`
}

// handleCheckAll upgrades to a websocket, streams one progress frame per
// finished batch and closes after the final result frame. A client that
// goes away cancels the sweep before its next batch.
func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream := &frameWriter{conn: conn}
	go s.watchClose(conn, cancel)
	go stream.keepAlive(ctx)

	result, err := sess.CheckAll(ctx, name, func(p domain.SweepProgress) {
		if werr := stream.send(sweepFrame{Type: frameProgress, Progress: &p}); werr != nil {
			cancel()
		}
	})
	if err != nil {
		message := "sweep failed"
		var valErr *apperrors.ValidationError
		if stderrors.As(err, &valErr) {
			message = valErr.Message
		}
		_ = stream.send(sweepFrame{Type: frameError, Message: message})
		stream.close(websocket.ClosePolicyViolation, message)
		return
	}
	if ctx.Err() != nil {
		s.logger.Debug("Sweep stream cancelled", zap.String("session", sess.ID), zap.String("name", result.Name))
		return
	}
	if result.Cancelled {
		_ = stream.send(sweepFrame{Type: frameError, Message: "sweep superseded by a newer check-all"})
		stream.close(websocket.CloseNormalClosure, "superseded")
		return
	}

	_ = stream.send(sweepFrame{Type: frameResult, Result: &result})
	stream.close(websocket.CloseNormalClosure, "done")
}

// watchClose drains client frames; any read error means the peer is gone.
func (s *Server) watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// frameWriter serialises data frames; gorilla allows one concurrent writer.
type frameWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (f *frameWriter) send(frame sweepFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
	return f.conn.WriteJSON(frame)
}

func (f *frameWriter) close(code int, text string) {
	deadline := time.Now().Add(constants.WebSocketConfig.WriteTimeout)
	_ = f.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

func (f *frameWriter) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(constants.WebSocketConfig.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(constants.WebSocketConfig.WriteTimeout)
			if err := f.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
