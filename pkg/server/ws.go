package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingEvery    = (wsPongWait * 9) / 10
	wsMaxMessage   = 64 << 10
	wsOutboxLength = 8
)

// wsRequest is one diagram request. ID is echoed in the reply so the page
// can drop replies to superseded requests.
type wsRequest struct {
	ID int `json:"id"`
	SankeyRequest
}

// wsReply carries either a figure or an error.
type wsReply struct {
	ID     int             `json:"id"`
	Figure json.RawMessage `json:"figure,omitempty"`
	Stats  *statsView      `json:"stats,omitempty"`
	Error  *errorBody      `json:"error,omitempty"`
}

// handleWS answers diagram requests over a websocket. Requests are handled
// in order; a failed request yields an error reply and leaves the session
// open.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	logger := s.logger.With("session", session)
	logger.Debug("websocket opened")
	defer logger.Debug("websocket closed")

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	ctx := r.Context()
	outbox := make(chan wsReply, wsOutboxLength)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case reply, ok := <-outbox:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(reply); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(outbox)
		<-writerDone
	}()
	send := func(reply wsReply) bool {
		select {
		case outbox <- reply:
			return true
		case <-writerDone:
			return false
		}
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if !send(wsReply{Error: &errorBody{Code: cferrors.ErrCodeInvalidInput, Message: "malformed request: " + err.Error()}}) {
					return
				}
				continue
			}
			return
		}

		opts := req.Options(pipeline.FormatJSON)
		opts.Logger = logger
		res, err := s.runner.Execute(ctx, s.ds, opts)
		if err != nil {
			logger.Debug("diagram request failed", "id", req.ID, "err", err)
			if !send(wsReply{ID: req.ID, Error: newErrorBody(err)}) {
				return
			}
			continue
		}
		if !send(wsReply{ID: req.ID, Figure: res.Artifacts[pipeline.FormatJSON], Stats: newStatsView(res)}) {
			return
		}
	}
}
