package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/baalimago/webagent/pkg/agent"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"github.com/gorilla/websocket"
)

const maxWSMessageBytes = 64 << 10

type wsIn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsOut struct {
	Type     string               `json:"type"`
	Step     *agent.Step          `json:"step,omitempty"`
	Answer   string               `json:"answer,omitempty"`
	Messages []pub_models.Message `json:"messages,omitempty"`
	Error    string               `json:"error,omitempty"`
	Status   int                  `json:"status,omitempty"`
}

func wsError(status int, err error) wsOut {
	return wsOut{Type: "error", Error: err.Error(), Status: status}
}

// handleWS runs turns of one session, streaming every step. Turns are
// handled one at a time, in the order the prompts arrive.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Store.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWSMessageBytes)
	ip := clientIP(r.Header.Get("X-Real-IP"), r.RemoteAddr)

	for {
		var in wsIn
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read failed", "session", sess.ID, "err", err)
			}
			return
		}
		var out wsOut
		switch {
		case in.Type != "prompt":
			out = wsError(http.StatusBadRequest, fmt.Errorf("unknown message type: '%v'", in.Type))
		case !s.limiter.Allow(ip):
			out = wsError(http.StatusTooManyRequests, errors.New("rate limit exceeded, try again shortly"))
		default:
			obs := agent.ObserverFunc(func(st agent.Step) {
				if err := conn.WriteJSON(wsOut{Type: "step", Step: &st}); err != nil {
					slog.Debug("failed to stream step", "session", sess.ID, "err", err)
				}
			})
			turn, err := s.svc.Send(r.Context(), sess, in.Content, obs)
			if err != nil {
				out = wsError(statusOf(err), err)
			} else {
				out = wsOut{Type: "answer", Answer: turn.Answer, Messages: turn.Messages}
			}
		}
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}
