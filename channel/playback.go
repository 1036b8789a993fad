package channel

import "github.com/samber/lo"

// PlaybackState is the canonical playback value shared across a user's
// devices. It is immutable: every update replaces it wholesale. Position is
// not streamed; each device reconstructs it from StartedAt.
type PlaybackState struct {
	Playing       bool    `json:"playing"`
	Duration      float64 `json:"duration"`      // seconds
	StartPosition float64 `json:"startPosition"` // seconds, in [0, Duration]
	StartedAt     int64   `json:"startedAt"`     // server timestamp, ms
}

// Position reconstructs the playback offset at the given server time in
// milliseconds. The same formula runs on the host's renderer and on every
// mirroring device.
func (s PlaybackState) Position(nowMs int64) float64 {
	pos := s.StartPosition
	if s.Playing {
		pos += float64(nowMs-s.StartedAt) / 1000
	}
	return lo.Clamp(pos, 0, s.Duration)
}

// clamped returns a copy with StartPosition forced into [0, Duration].
func (s PlaybackState) clamped() PlaybackState {
	s.StartPosition = lo.Clamp(s.StartPosition, 0, s.Duration)
	return s
}

// pausedAt returns the equivalent paused state frozen at the position the
// formula yields at nowMs.
func (s PlaybackState) pausedAt(nowMs int64) PlaybackState {
	return PlaybackState{
		Playing:       false,
		Duration:      s.Duration,
		StartPosition: s.Position(nowMs),
		StartedAt:     nowMs,
	}
}
