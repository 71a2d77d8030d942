// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from the same origin as the socket.
	CheckOrigin: func(*http.Request) bool { return true },
}

const socketWriteDeadline = 10 * time.Second

// handleJobSocket streams progress events for one job over a websocket.
// The connection closes after the terminal event.
func (s *Server) handleJobSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || s.broker.Get(id) == nil {
		http.Error(w, "unknown job", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := s.broker.Subscribe(id)
	defer cancel()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range events {
		conn.SetWriteDeadline(time.Now().Add(socketWriteDeadline))
		if err := conn.WriteJSON(ev); err != nil {
			s.log.Debug().Int64("job", id).Err(err).Msg("websocket write failed")
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(socketWriteDeadline))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
