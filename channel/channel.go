package channel

import (
	"github.com/Strum355/log"
	"github.com/google/uuid"

	"Harmony/utils"
)

// Descriptor is the pre-validated admission record for one connection.
// Validation (authentication, token checks) happens upstream; a descriptor
// reaching this package is trusted.
type Descriptor struct {
	UserID        string
	DeviceID      string
	HostRequested bool
	Info          DeviceInfo
}

const inboxSize = 256

type connectEvent struct {
	desc  Descriptor
	conn  Sender
	reply chan string
}

type disconnectEvent struct {
	sessionID string
}

type frameEvent struct {
	sessionID string
	data      []byte
}

// UserChannel is the per-user coordinator actor. All state below the inbox
// is owned exclusively by the run goroutine; callers interact only by
// enqueueing events. The channel is created on a user's first connection and
// destroys itself, state included, once the roster empties.
type UserChannel struct {
	userID   string
	registry *Registry
	inbox    chan any
	stopped  bool // guarded by registry.mu

	sessions []*Session
	hostID   string
	pbState  *PlaybackState
	pbTracks *TrackSnapshot
}

func newUserChannel(userID string, r *Registry) *UserChannel {
	return &UserChannel{
		userID:   userID,
		registry: r,
		inbox:    make(chan any, inboxSize),
	}
}

// run serializes every event for this user. It returns once the roster has
// emptied and no events remain queued.
func (ch *UserChannel) run() {
	for {
		switch ev := (<-ch.inbox).(type) {
		case connectEvent:
			ch.handleConnect(ev)
		case frameEvent:
			ch.handleFrame(ev)
		case disconnectEvent:
			ch.handleDisconnect(ev)
			if len(ch.sessions) == 0 && ch.registry.tryRemove(ch) {
				return
			}
		}
	}
}

func (ch *UserChannel) handleConnect(ev connectEvent) {
	s := &Session{
		ID:              uuid.NewString(),
		DeviceID:        ev.desc.DeviceID,
		Info:            ev.desc.Info,
		LastActivatedAt: ch.registry.now(),
		conn:            ev.conn,
	}
	ch.sessions = append(ch.sessions, s)
	if ev.desc.HostRequested {
		// Last claim wins, no election.
		ch.hostID = s.ID
	}
	log.WithFields(log.Fields{
		"user":    ch.userID,
		"session": s.ID,
		"device":  s.DeviceID,
		"host":    ev.desc.HostRequested,
	}).Info("session connected")

	for _, rec := range ch.sessions {
		if rec == s {
			continue
		}
		ch.sendTo(rec, updatedMessage{
			Type:     "updated",
			ByHost:   s.ID == ch.hostID,
			Sessions: ch.viewsFor(rec),
		})
	}
	ch.sendTo(s, connectedMessage{
		Type:     "connected",
		Sessions: ch.viewsFor(s),
		PbState:  ch.pbState,
		PbTracks: ch.pbTracks,
	})
	ev.reply <- s.ID
}

func (ch *UserChannel) handleDisconnect(ev disconnectEvent) {
	s := ch.findSession(ev.sessionID)
	if s == nil {
		return
	}
	kept := ch.sessions[:0]
	for _, other := range ch.sessions {
		if other.ID != ev.sessionID {
			kept = append(kept, other)
		}
	}
	ch.sessions = kept

	stateChanged := false
	if ch.hostID == ev.sessionID {
		ch.hostID = ""
		if ch.pbState != nil && ch.pbState.Playing {
			// Freeze on host loss: the canonical state becomes paused at
			// the position the host was at when it vanished.
			frozen := ch.pbState.pausedAt(ch.registry.now())
			ch.pbState = &frozen
			stateChanged = true
			log.WithFields(log.Fields{
				"user":     ch.userID,
				"position": utils.FormatPosition(frozen.StartPosition),
			}).Info("host disconnected, playback frozen")
		}
	}

	for _, rec := range ch.sessions {
		msg := updatedMessage{
			Type:     "updated",
			Sessions: ch.viewsFor(rec),
		}
		if stateChanged {
			msg.PbState = ch.pbState
		}
		ch.sendTo(rec, msg)
	}
}

func (ch *UserChannel) handleFrame(ev frameEvent) {
	s := ch.findSession(ev.sessionID)
	if s == nil {
		return
	}
	parsed, err := parseClientMessage(ev.data)
	if err != nil {
		log.WithFields(log.Fields{
			"user":    ch.userID,
			"session": s.ID,
			"error":   err.Error(),
		}).Error("dropping inbound frame")
		return
	}
	switch msg := parsed.(type) {
	case *setSessionMessage:
		ch.handleSetSession(s, msg)
	case *setStateMessage:
		ch.handleSetState(s, msg)
	}
}

func (ch *UserChannel) handleSetSession(s *Session, msg *setSessionMessage) {
	if msg.DeviceID != nil {
		s.DeviceID = *msg.DeviceID
	}
	if msg.Info != nil {
		s.Info = *msg.Info
	}
	if msg.Volume != nil {
		s.Volume = *msg.Volume
	}
	if msg.Activate {
		s.LastActivatedAt = ch.registry.now()
		s.freshlyActivated = true
	}
	for _, rec := range ch.sessions {
		ch.sendTo(rec, updatedMessage{
			Type:     "updated",
			ByHost:   s.ID == ch.hostID,
			ByYou:    rec.ID == s.ID,
			Sessions: ch.viewsFor(rec),
		})
	}
}

func (ch *UserChannel) handleSetState(s *Session, msg *setStateMessage) {
	rosterChanged := false
	switch msg.Host.kind {
	case hostSelf:
		rosterChanged = rosterChanged || ch.hostID != s.ID
		ch.hostID = s.ID
	case hostByID:
		if ch.findSession(msg.Host.sessionID) != nil {
			rosterChanged = rosterChanged || ch.hostID != msg.Host.sessionID
			ch.hostID = msg.Host.sessionID
		} else {
			// Stale reference, host unchanged.
			log.WithFields(log.Fields{
				"user":    ch.userID,
				"session": s.ID,
				"claimed": msg.Host.sessionID,
			}).Debug("ignoring host claim for unknown session")
		}
	}

	stateChanged := false
	if msg.State != nil {
		adopted := msg.State.clamped()
		if ch.hostID == "" {
			// Nobody is authoritative for position, so nothing can play.
			adopted.Playing = false
		}
		ch.pbState = &adopted
		stateChanged = true
	}

	tracksChanged := false
	if msg.Tracks != nil {
		ch.pbTracks = msg.Tracks
		tracksChanged = true
		if msg.Tracks.CurrentTrack == nil {
			ch.pbState = nil
			stateChanged = true
		} else if msg.TrackChange != nil && *msg.TrackChange {
			ch.registry.trackChanged(ch.userID, *msg.Tracks.CurrentTrack, msg.Tracks.SetListName)
		}
	}

	if msg.Volume != nil && ch.hostID != "" {
		if host := ch.findSession(ch.hostID); host != nil {
			host.Volume = *msg.Volume
			rosterChanged = true
		}
	}

	private := s.freshlyActivated && s.ID != ch.hostID
	s.freshlyActivated = false

	if private {
		// The sender just activated and is not host: its own update is
		// likely stale, so converge it onto the canonical state instead of
		// broadcasting its view.
		tc := true
		ch.sendTo(s, updatedMessage{
			Type:          "updated",
			ByHost:        true,
			PbState:       ch.pbState,
			PbTracks:      ch.pbTracks,
			PbTrackChange: &tc,
		})
	}

	for _, rec := range ch.sessions {
		if private && rec.ID == s.ID {
			continue
		}
		msgOut := updatedMessage{
			Type:   "updated",
			ByHost: s.ID == ch.hostID,
			ByYou:  rec.ID == s.ID,
		}
		if stateChanged {
			msgOut.PbState = ch.pbState
		}
		if tracksChanged {
			msgOut.PbTracks = ch.pbTracks
			msgOut.PbTrackChange = msg.TrackChange
		}
		if rosterChanged {
			msgOut.Sessions = ch.viewsFor(rec)
		}
		ch.sendTo(rec, msgOut)
	}
}

func (ch *UserChannel) findSession(id string) *Session {
	for _, s := range ch.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (ch *UserChannel) viewsFor(rec *Session) []SessionView {
	views := make([]SessionView, 0, len(ch.sessions))
	for _, s := range ch.sessions {
		views = append(views, SessionView{
			You:             s.ID == rec.ID,
			Host:            s.ID == ch.hostID,
			ID:              s.ID,
			DeviceID:        s.DeviceID,
			Info:            s.Info,
			Volume:          s.Volume,
			LastActivatedAt: s.LastActivatedAt,
		})
	}
	return views
}

// sendTo delivers best-effort: a failed send is logged and forgotten. The
// recipient catches up on the next state change or by reconnecting.
func (ch *UserChannel) sendTo(s *Session, v any) {
	if err := s.conn.Send(v); err != nil {
		log.WithFields(log.Fields{
			"user":    ch.userID,
			"session": s.ID,
			"error":   err.Error(),
		}).Error("failed to deliver message")
	}
}
