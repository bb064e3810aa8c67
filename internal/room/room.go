// Package room implements the per-room relay: one renderer, any number of
// controllers, and the message forwarding between them. Each Room is an
// actor; all mutation of a room's state happens on its own goroutine, so
// attaches, detaches and forwards for the same room are serialized while
// distinct rooms proceed fully in parallel.
package room

import (
	"context"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"github.com/badenpong/cloud-relay/internal/protocol"
)

type Msg interface{ isRoomMsg() }

// AttachRenderer installs Client as the room's renderer. An already
// attached renderer is evicted first (last-writer-wins takeover).
type AttachRenderer struct{ Client *Client }

// AttachController registers Client under its cid in the controller set.
type AttachController struct{ Client *Client }

// DetachRenderer clears the renderer, but only if it still is Client;
// a stale close racing a takeover is a no-op.
type DetachRenderer struct{ Client *Client }

// DetachController removes Client from the controller set. Idempotent.
type DetachController struct{ Client *Client }

// FromRenderer broadcasts the original payload to every controller.
type FromRenderer struct{ In protocol.Inbound }

// FromController forwards the payload to the renderer, wrapped as an
// input envelope tagged with CID. Dropped silently when no renderer is
// attached.
type FromController struct {
	CID string
	In  protocol.Inbound
}

// GetView reflects internal state without data races. Test-only.
type GetView struct{ Reply chan View }

type Shutdown struct{}

func (AttachRenderer) isRoomMsg()   {}
func (AttachController) isRoomMsg() {}
func (DetachRenderer) isRoomMsg()   {}
func (DetachController) isRoomMsg() {}
func (FromRenderer) isRoomMsg()     {}
func (FromController) isRoomMsg()   {}
func (GetView) isRoomMsg()          {}
func (Shutdown) isRoomMsg()         {}

type View struct {
	HasRenderer bool
	Controllers []string
	Lobby       protocol.LobbySnapshot
}

type Room struct {
	name        string
	inbox       chan Msg
	renderer    *Client
	controllers map[string]*Client
	lobby       protocol.LobbySnapshot
	audit       *auditlog.Log
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRoom starts a room actor. audit may be nil.
func NewRoom(parent context.Context, name string, audit *auditlog.Log) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		name:        name,
		inbox:       make(chan Msg, 64),
		controllers: make(map[string]*Client),
		lobby:       protocol.NewLobbySnapshot(),
		audit:       audit,
		ctx:         ctx,
		cancel:      cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Name() string { return r.name }

// Inbox is how the socket layer (and tests) talk to the room.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case AttachRenderer:
				r.attachRenderer(msg.Client)

			case AttachController:
				r.attachController(msg.Client)

			case DetachRenderer:
				r.detachRenderer(msg.Client)

			case DetachController:
				r.detachController(msg.Client)

			case FromRenderer:
				r.fromRenderer(msg.In)

			case FromController:
				r.fromController(msg.CID, msg.In)

			case GetView:
				cids := make([]string, 0, len(r.controllers))
				for cid := range r.controllers {
					cids = append(cids, cid)
				}
				msg.Reply <- View{
					HasRenderer: r.renderer != nil,
					Controllers: cids,
					Lobby:       r.lobby,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) attachRenderer(c *Client) {
	if r.renderer != nil && r.renderer != c {
		// Evict the stale session; its detach will miss the identity
		// guard and stay silent.
		close(r.renderer.outbox)
	}
	r.renderer = c
	r.audit.Record("renderer_connected", r.name, map[string]any{"ip": c.IP()})
	c.send(protocol.EncodeHello(protocol.RoleRenderer, r.name, ""))
	r.broadcast(protocol.EncodePresence(true))
}

func (r *Room) attachController(c *Client) {
	r.controllers[c.CID()] = c
	r.audit.Record("controller_connected", r.name, map[string]any{"cid": c.CID(), "ip": c.IP()})
	c.send(protocol.EncodeHello(protocol.RoleController, r.name, c.CID()))
	c.send(protocol.EncodePresence(r.renderer != nil))
	r.renderer.send(protocol.EncodeConnect(c.CID()))
}

func (r *Room) detachRenderer(c *Client) {
	if r.renderer != c {
		return
	}
	r.renderer = nil
	close(c.outbox)
	r.audit.Record("renderer_disconnected", r.name, map[string]any{"ip": c.IP()})
	r.broadcast(protocol.EncodePresence(false))
}

func (r *Room) detachController(c *Client) {
	cur, ok := r.controllers[c.CID()]
	if !ok || cur != c {
		return
	}
	delete(r.controllers, c.CID())
	close(c.outbox)
	r.audit.Record("controller_disconnected", r.name, map[string]any{"cid": c.CID(), "ip": c.IP()})
	r.renderer.send(protocol.EncodeDisconnect(c.CID()))
}

func (r *Room) fromRenderer(in protocol.Inbound) {
	if in.Type == protocol.TypeGameEvent {
		r.audit.Record("game_event", r.name, map[string]any{"data": in.Data})
	}
	r.broadcast(in.Raw)
}

func (r *Room) fromController(cid string, in protocol.Inbound) {
	r.mirrorLobby(cid, in)
	r.renderer.send(protocol.EncodeInput(cid, in.Raw))
}

// mirrorLobby keeps an advisory copy of the lobby fields controller verbs
// touch. The renderer owns the canonical lobby state; this copy only feeds
// GetView and the audit log, and never gates forwarding.
func (r *Room) mirrorLobby(cid string, in protocol.Inbound) {
	switch in.Type {
	case protocol.TypeMode:
		if in.Mode != "" {
			r.lobby.Mode = in.Mode
		}
		r.audit.Record("controller_mode", r.name, map[string]any{"cid": cid, "mode": in.Mode})
	case protocol.TypeClaim:
		if in.Who != "" {
			r.lobby.Claimed[in.Who] = true
		}
		r.audit.Record("controller_claim", r.name, map[string]any{"cid": cid, "who": in.Who})
	case protocol.TypeReady:
		if in.Who != "" && in.Ready != nil {
			r.lobby.Ready[in.Who] = *in.Ready
		}
		data := map[string]any{"cid": cid, "who": in.Who}
		if in.Ready != nil {
			data["ready"] = *in.Ready
		}
		r.audit.Record("controller_ready", r.name, data)
	case protocol.TypeStart:
		r.audit.Record("controller_start", r.name, map[string]any{"cid": cid})
	}
}

func (r *Room) broadcast(payload []byte) {
	for _, c := range r.controllers {
		c.send(payload)
	}
}

func (r *Room) shutdown() {
	if r.renderer != nil {
		close(r.renderer.outbox)
		r.renderer = nil
	}
	for cid, c := range r.controllers {
		close(c.outbox)
		delete(r.controllers, cid)
	}
	r.cancel()
}
