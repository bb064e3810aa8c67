// Package controller holds the controller-side lobby logic: the screen
// state machine, the optimistic seat view and the start countdown. It is
// pure except for the Sequencer's timer; socket plumbing lives with the
// caller, which sends whatever frames the session methods return.
package controller

import (
	"encoding/json"
	"sync"

	"github.com/badenpong/cloud-relay/internal/protocol"
)

type Screen string

const (
	ScreenModeSelect   Screen = "mode-select"
	ScreenPlayerSelect Screen = "player-select"
	ScreenCountdown    Screen = "countdown"
	ScreenLiveControl  Screen = "live-control"
)

// Session tracks the local lobby view for one controller connection. The
// local choices (mode, seat) are optimistic; the authoritative lobby state
// arrives later in renderer snapshots and is reconciled via MergeSeatView.
type Session struct {
	mu     sync.Mutex
	screen Screen
	mode   string // "" until a mode is chosen
	me     string // "" until a seat is chosen
	lobby  protocol.LobbySnapshot
}

func NewSession() *Session {
	return &Session{
		screen: ScreenModeSelect,
		lobby:  protocol.NewLobbySnapshot(),
	}
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Me() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.me
}

// Lobby returns the last received authoritative snapshot.
func (s *Session) Lobby() protocol.LobbySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lobby
}

// ChooseMode enters player-select and resets the seat choice. Returns the
// frames to send.
func (s *Session) ChooseMode(mode string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenModeSelect && s.screen != ScreenPlayerSelect {
		return nil
	}
	s.mode = mode
	s.me = ""
	s.screen = ScreenPlayerSelect
	return [][]byte{protocol.EncodeMode(mode)}
}

// Back returns from player-select to mode-select, clearing mode and seat.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenPlayerSelect {
		return
	}
	s.mode = ""
	s.me = ""
	s.screen = ScreenModeSelect
}

// ChooseSeat records the seat optimistically, before any confirmation,
// and emits the claim plus the legacy side frame.
func (s *Session) ChooseSeat(seat string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenPlayerSelect {
		return nil
	}
	s.me = seat
	return [][]byte{protocol.EncodeClaim(seat), protocol.EncodeSide(seat)}
}

// PressReady handles the ready button. In pvc there is no second party to
// wait for: it emits start and the countdown begins locally at once. In
// pvp it toggles the ready flag against the last-known snapshot value;
// the authoritative flag comes back in the next lobby snapshot.
func (s *Session) PressReady() (frames [][]byte, countdown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.me == "" || s.mode == "" {
		return nil, false
	}
	switch s.mode {
	case protocol.ModePVC:
		s.screen = ScreenCountdown
		return [][]byte{protocol.EncodeStart()}, true
	case protocol.ModePVP:
		next := !s.lobby.Ready[s.me]
		return [][]byte{protocol.EncodeReady(s.me, next)}, false
	}
	return nil, false
}

// HandleLobby stores a renderer-authored snapshot.
func (s *Session) HandleLobby(raw json.RawMessage) {
	var snap protocol.LobbySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Mode != "" {
		s.lobby.Mode = snap.Mode
	}
	if snap.Claimed != nil {
		s.lobby.Claimed = snap.Claimed
	}
	if snap.Ready != nil {
		s.lobby.Ready = snap.Ready
	}
}

// HandleStart reacts to a renderer start: the countdown begins (or
// restarts) regardless of the current screen.
func (s *Session) HandleStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = ScreenCountdown
}

// CountdownDone transitions into live control once the sequencer fires.
func (s *Session) CountdownDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenCountdown {
		s.screen = ScreenLiveControl
	}
}

// Move emits a paddle move for the chosen seat; dir is -1, 0 or +1. Nil
// when no seat is chosen.
func (s *Session) Move(dir int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.me == "" {
		return nil
	}
	return protocol.EncodeMove(s.me, dir)
}

// Pause emits a pause control frame.
func (s *Session) Pause() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.EncodeControl("pause", s.me)
}

// SeatView is what the UI renders for one seat button.
type SeatView struct {
	Selected   bool // this is my seat
	Selectable bool // the button may be pressed
	Ready      bool // authoritative ready flag
}

// MergeSeatView reconciles the locally chosen seat with the authoritative
// snapshot. In pvp a seat claimed by a different controller becomes
// unselectable; the locally claimed seat stays selectable regardless of
// what the snapshot says. Pure.
func MergeSeatView(me, mode string, snap protocol.LobbySnapshot, seat string) SeatView {
	v := SeatView{
		Selected:   me == seat,
		Selectable: true,
		Ready:      snap.Ready[seat],
	}
	if mode == protocol.ModePVP && snap.Claimed[seat] && me != seat {
		v.Selectable = false
	}
	return v
}

// SeatViews merges every seat in the snapshot for the given session.
func (s *Session) SeatViews() map[string]SeatView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]SeatView, len(s.lobby.Claimed))
	for seat := range s.lobby.Claimed {
		out[seat] = MergeSeatView(s.me, s.mode, s.lobby, seat)
	}
	return out
}
