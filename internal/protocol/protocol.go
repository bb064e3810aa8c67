// Package protocol defines the wire format spoken between the relay, the
// renderer and the controllers. Every frame is a JSON object tagged by a
// "type" field; the relay only interprets the handful of types below and
// forwards everything else untouched.
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Roles a socket may attach as.
const (
	RoleRenderer   = "renderer"
	RoleController = "controller"
)

// Relay-authored message types.
const (
	TypeHello      = "hello"
	TypeRenderer   = "renderer"
	TypeConnect    = "connect"
	TypeDisconnect = "disconnect"
	TypeInput      = "input"
)

// Controller-authored types. The relay mirrors the lobby-shaped ones into
// the room's advisory snapshot; all of them are forwarded to the renderer
// either way.
const (
	TypeMode    = "mode"
	TypeStart   = "start"
	TypeReady   = "ready"
	TypeClaim   = "claim"
	TypeSide    = "side"
	TypeMove    = "move"
	TypeControl = "control"
)

// Renderer-authored types the relay or the controller client look at.
const (
	TypeLobby     = "lobby"
	TypeGameEvent = "game_event"
)

// Game modes and seats.
const (
	ModeCVC = "cvc"
	ModePVC = "pvc"
	ModePVP = "pvp"

	SeatP1 = "p1"
	SeatP2 = "p2"
)

// NewCID returns an opaque per-connection controller id. Ids are never
// reused; a reconnecting controller always gets a fresh one.
func NewCID() string {
	return uuid.NewString()
}

// Hello acknowledges a successful attach.
type Hello struct {
	Type string `json:"type"`
	Role string `json:"role"`
	Room string `json:"room"`
	CID  string `json:"cid,omitempty"`
}

// RendererPresence tells controllers whether a renderer is attached.
type RendererPresence struct {
	Type   string `json:"type"`
	Online bool   `json:"online"`
}

// PeerEvent tells the renderer a controller joined or left.
type PeerEvent struct {
	Type string `json:"type"`
	CID  string `json:"cid"`
}

// Input wraps a controller message with the sender's cid so the renderer
// can attribute it to a seat. Msg carries the original payload verbatim.
type Input struct {
	Type string          `json:"type"`
	CID  string          `json:"cid"`
	Msg  json.RawMessage `json:"msg"`
}

// LobbySnapshot mirrors the renderer-owned lobby state.
type LobbySnapshot struct {
	Mode    string          `json:"mode"`
	Claimed map[string]bool `json:"claimed"`
	Ready   map[string]bool `json:"ready"`
}

// NewLobbySnapshot returns the default lobby state for a fresh room.
func NewLobbySnapshot() LobbySnapshot {
	return LobbySnapshot{
		Mode:    ModeCVC,
		Claimed: map[string]bool{SeatP1: false, SeatP2: false},
		Ready:   map[string]bool{SeatP1: false, SeatP2: false},
	}
}

// Inbound is one parsed frame from a peer. Only Type and the lobby fields
// are interpreted; Raw keeps the exact bytes for verbatim forwarding.
type Inbound struct {
	Type  string          `json:"type"`
	Mode  string          `json:"mode,omitempty"`
	Who   string          `json:"who,omitempty"`
	Ready *bool           `json:"ready,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Raw   json.RawMessage `json:"-"`
}

// Decode parses a raw frame. ok is false only for unparseable payloads,
// which the relay drops silently. Parseable payloads that are not objects
// (or carry unexpected field types) still forward; field extraction is
// best-effort.
func Decode(data []byte) (in Inbound, ok bool) {
	if !json.Valid(data) {
		return Inbound{}, false
	}
	in.Raw = append(json.RawMessage(nil), data...)
	_ = json.Unmarshal(data, &in)
	return in, true
}

func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable via a broken encoder type, not via peer input.
		panic(err)
	}
	return b
}

func EncodeHello(role, room, cid string) []byte {
	return marshal(Hello{Type: TypeHello, Role: role, Room: room, CID: cid})
}

func EncodePresence(online bool) []byte {
	return marshal(RendererPresence{Type: TypeRenderer, Online: online})
}

func EncodeConnect(cid string) []byte {
	return marshal(PeerEvent{Type: TypeConnect, CID: cid})
}

func EncodeDisconnect(cid string) []byte {
	return marshal(PeerEvent{Type: TypeDisconnect, CID: cid})
}

func EncodeInput(cid string, msg json.RawMessage) []byte {
	return marshal(Input{Type: TypeInput, CID: cid, Msg: msg})
}

// Controller-side encoders, used by pkg/controller and the terminal client.

type modeMsg struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

type seatMsg struct {
	Type string `json:"type"`
	Who  string `json:"who"`
}

type readyMsg struct {
	Type  string `json:"type"`
	Who   string `json:"who"`
	Ready bool   `json:"ready"`
}

type startMsg struct {
	Type string `json:"type"`
}

type moveMsg struct {
	Type string `json:"type"`
	Who  string `json:"who"`
	Dir  int    `json:"dir"`
}

type controlMsg struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Who    string `json:"who,omitempty"`
}

func EncodeMode(mode string) []byte { return marshal(modeMsg{Type: TypeMode, Mode: mode}) }
func EncodeClaim(who string) []byte { return marshal(seatMsg{Type: TypeClaim, Who: who}) }
func EncodeSide(who string) []byte { return marshal(seatMsg{Type: TypeSide, Who: who}) }
func EncodeStart() []byte { return marshal(startMsg{Type: TypeStart}) }
func EncodeMove(who string, dir int) []byte {
	return marshal(moveMsg{Type: TypeMove, Who: who, Dir: dir})
}
func EncodeReady(who string, ready bool) []byte {
	return marshal(readyMsg{Type: TypeReady, Who: who, Ready: ready})
}
func EncodeControl(action, who string) []byte {
	return marshal(controlMsg{Type: TypeControl, Action: action, Who: who})
}
