// Package hub owns the process-wide room table. The table is an actor so
// lazy room creation is serialized; rooms themselves run independently.
package hub

import (
	"context"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"github.com/badenpong/cloud-relay/internal/room"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom resolves Name, creating the room on first reference. Rooms
// are never deleted; an empty room persists for the process lifetime.
type EnsureRoom struct {
	Name  string
	Reply chan *room.Room
}

// GetRoom replies with the room, or nil if it was never referenced.
type GetRoom struct {
	Name  string
	Reply chan *room.Room
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	audit  *auditlog.Log
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub starts the room table. audit may be nil; log must not be.
func NewHub(parent context.Context, log *zap.Logger, audit *auditlog.Log) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		audit:  audit,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure is a convenience wrapper around EnsureRoom for callers that are
// not actors themselves.
func (h *Hub) Ensure(name string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.inbox <- EnsureRoom{Name: name, Reply: reply}
	return <-reply
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				rm := h.rooms[msg.Name]
				if rm == nil {
					rm = room.NewRoom(h.ctx, msg.Name, h.audit)
					h.rooms[msg.Name] = rm
					h.log.Info("room created", zap.String("room", msg.Name))
				}
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Name] // may be nil

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
