// Package ws implements the socket attach protocol: resolve role and room
// from the upgrade request, register the connection with its room actor,
// then pump frames between the socket and the room until close.
package ws

import (
	"net/http"
	"strings"

	"github.com/badenpong/cloud-relay/internal/hub"
	"github.com/badenpong/cloud-relay/internal/protocol"
	"github.com/badenpong/cloud-relay/internal/room"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Handler accepts relay sockets on /ws?role=...&room=...
func Handler(h *hub.Hub, defaultRoom string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		roomName := strings.TrimSpace(r.URL.Query().Get("room"))
		if roomName == "" {
			roomName = defaultRoom
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Controllers are phones on arbitrary origins.
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}

		if role != protocol.RoleRenderer && role != protocol.RoleController {
			// Fail fast, no error payload; the remote observes a close.
			_ = conn.Close(websocket.StatusPolicyViolation, "")
			return
		}

		rm := h.Ensure(roomName)
		ip := clientIP(r)

		var client *room.Client
		if role == protocol.RoleRenderer {
			client = room.NewClient("", ip)
			rm.Inbox() <- room.AttachRenderer{Client: client}
			defer func() { rm.Inbox() <- room.DetachRenderer{Client: client} }()
			log.Info("renderer attached", zap.String("room", roomName), zap.String("ip", ip))
		} else {
			client = room.NewClient(protocol.NewCID(), ip)
			rm.Inbox() <- room.AttachController{Client: client}
			defer func() { rm.Inbox() <- room.DetachController{Client: client} }()
			log.Info("controller attached",
				zap.String("room", roomName), zap.String("cid", client.CID()), zap.String("ip", ip))
		}

		// Writer: drains the room-owned outbox. The outbox closing means
		// the room let go of this client: detach, takeover or shutdown.
		go func() {
			for payload := range client.Outbox() {
				if conn.Write(r.Context(), websocket.MessageText, payload) != nil {
					// Peer unavailable; the room keeps sending and we
					// keep draining until the read side notices.
					continue
				}
			}
			_ = conn.Close(websocket.StatusGoingAway, "")
		}()

		// Reader: every parseable frame is forwarded by role; malformed
		// frames are dropped and the connection stays open.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			in, ok := protocol.Decode(data)
			if !ok {
				continue
			}
			if role == protocol.RoleRenderer {
				rm.Inbox() <- room.FromRenderer{In: in}
			} else {
				rm.Inbox() <- room.FromController{CID: client.CID(), In: in}
			}
		}
	}
}

// clientIP prefers the first X-Forwarded-For hop, matching what the
// reverse proxy in front of the relay sets.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		return strings.TrimSpace(strings.SplitN(xf, ",", 2)[0])
	}
	return r.RemoteAddr
}
