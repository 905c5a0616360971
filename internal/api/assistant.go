package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Subhash2005/equi-bridge/internal/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AssistantMessage is the wire frame for the voice assistant socket.
// Clients send "utterance" and "toggle" frames; the server replies with
// "command" and "status" frames. Speech recognition runs on the client,
// the server only interprets the transcribed text.
type AssistantMessage struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
	Route  string `json:"route,omitempty"`
	Speech string `json:"speech,omitempty"`
	State  string `json:"state,omitempty"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Utterance string `json:"utterance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cmd := voice.Interpret(req.Utterance)

	if cmd.Action == voice.ActionLogout {
		if err := s.sessions.Delete(r.Context(), extractToken(r)); err != nil {
			slog.Warn("failed to delete session on voice logout", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleAssistantWS(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("assistant websocket connected", "email", sess.Email)

	listening := false

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var msg AssistantMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Debug("invalid message format", "error", err)
			continue
		}

		switch msg.Type {
		case "toggle":
			listening = !listening
			reply := AssistantMessage{Type: "status", State: string(voice.StateIdle), Speech: "Voice mode deactivated."}
			if listening {
				reply.State = string(voice.StateListening)
				reply.Speech = "Voice mode activated. How can I help you?"
			}
			if err := s.sendAssistantMessage(conn, reply); err != nil {
				return
			}

		case "utterance":
			if !listening {
				continue
			}
			// One utterance per activation, like the push-to-talk mic
			listening = false

			cmd := voice.Interpret(msg.Text)

			if cmd.Action == voice.ActionLogout {
				if err := s.sessions.Delete(r.Context(), extractToken(r)); err != nil {
					slog.Warn("failed to delete session on voice logout", "error", err)
				}
			}

			if err := s.sendAssistantMessage(conn, AssistantMessage{
				Type:   "command",
				Action: string(cmd.Action),
				Route:  cmd.Route,
				Speech: cmd.Speech,
			}); err != nil {
				return
			}

			if cmd.Action == voice.ActionLogout {
				return
			}
		}
	}

	slog.Info("assistant websocket disconnected", "email", sess.Email)
}

func (s *Server) sendAssistantMessage(conn *websocket.Conn, msg AssistantMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal assistant message", "error", err)
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send assistant message", "error", err)
		return err
	}
	return nil
}
