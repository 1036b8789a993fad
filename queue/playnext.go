package queue

import "github.com/samber/lo"

// PlayNextEngine layers a higher-priority "play next" queue over a base
// Engine. It holds the base by composition and forwards everything it does
// not intercept; skip operations consume the play-next queue before the base
// queue. The play-next layer has its own bounded back history and a current
// track override that shadows the base current track while set.
type PlayNextEngine struct {
	base     *Engine
	playNext []TrackID
	history  []TrackID
	override TrackID
}

// NewPlayNextEngine wraps base with an empty play-next layer.
func NewPlayNextEngine(base *Engine) *PlayNextEngine {
	return &PlayNextEngine{base: base}
}

// CurrentTrack returns the play-next override when present, otherwise the
// base engine's current track.
func (p *PlayNextEngine) CurrentTrack() TrackID {
	if p.override != "" {
		return p.override
	}
	return p.base.CurrentTrack()
}

// PlayNextQueue returns a copy of the user-inserted play-next queue.
func (p *PlayNextEngine) PlayNextQueue() []TrackID { return append([]TrackID(nil), p.playNext...) }

// PlayNextHistory returns a copy of the play-next back history, oldest first.
func (p *PlayNextEngine) PlayNextHistory() []TrackID { return append([]TrackID(nil), p.history...) }

// AppendToPlayNextQueue adds tracks to the play-next tail.
func (p *PlayNextEngine) AppendToPlayNextQueue(tracks []TrackID) {
	p.playNext = append(p.playNext, tracks...)
	p.base.emit(EventPlayNextQueueChange)
}

// RemoveFromPlayNextQueue splices count tracks out of the play-next queue
// starting at index. Out-of-range portions are ignored.
func (p *PlayNextEngine) RemoveFromPlayNextQueue(index, count int) {
	if index < 0 || count <= 0 || index >= len(p.playNext) {
		return
	}
	end := min(index+count, len(p.playNext))
	p.playNext = append(p.playNext[:index], p.playNext[end:]...)
	p.base.emit(EventPlayNextQueueChange)
}

// SkipNext advances n tracks, consuming the play-next queue first. When the
// play-next queue runs out the play-next history is cleared and the
// remainder is delegated to the base engine.
func (p *PlayNextEngine) SkipNext(n int) {
	if n <= 0 {
		return
	}
	if p.base.repeat == RepeatOne {
		p.base.setRepeat(RepeatAll)
	}
	taken := 0
	for taken < n && len(p.playNext) > 0 {
		if p.override != "" {
			p.pushHistory(p.override)
		}
		p.override = p.playNext[0]
		p.playNext = p.playNext[1:]
		taken++
	}
	if taken < n {
		p.history = nil
		p.override = ""
		p.base.SkipNext(n - taken)
	} else {
		p.base.emit(EventQueueChange)
		p.base.emit(EventTrackChange)
	}
	p.base.emit(EventPlayNextQueueChange)
}

// SkipPrevious steps back n tracks through the play-next history. On
// exhaustion the remainder is delegated to the base engine; the play-next
// queue is deliberately left intact, unlike the forward case.
func (p *PlayNextEngine) SkipPrevious(n int) {
	if n <= 0 {
		return
	}
	if p.base.repeat == RepeatOne {
		p.base.setRepeat(RepeatAll)
	}
	taken := 0
	for taken < n && len(p.history) > 0 {
		if p.override != "" {
			p.playNext = append([]TrackID{p.override}, p.playNext...)
		}
		last := len(p.history) - 1
		p.override = p.history[last]
		p.history = p.history[:last]
		taken++
	}
	if taken < n {
		if p.override != "" {
			p.playNext = append([]TrackID{p.override}, p.playNext...)
			p.override = ""
			taken++
		}
		if taken < n {
			p.base.SkipPrevious(n - taken)
		} else {
			p.base.emit(EventQueueChange)
			p.base.emit(EventTrackChange)
		}
	} else {
		p.base.emit(EventQueueChange)
		p.base.emit(EventTrackChange)
	}
	p.base.emit(EventPlayNextQueueChange)
}

// Next is the auto-advance variant for "track ended". Under RepeatOne it
// defers to the base engine, which leaves state untouched and only notifies.
func (p *PlayNextEngine) Next() {
	if p.base.repeat == RepeatOne {
		p.base.Next()
		return
	}
	p.SkipNext(1)
}

// RemoveTracks filters the base engine and both play-next lists. When the
// override track is removed, playback advances off it.
func (p *PlayNextEngine) RemoveTracks(keep func(TrackID) bool) {
	p.base.RemoveTracks(keep)
	p.playNext = lo.Filter(p.playNext, func(t TrackID, _ int) bool { return keep(t) })
	p.history = lo.Filter(p.history, func(t TrackID, _ int) bool { return keep(t) })
	if p.override != "" && !keep(p.override) {
		p.SkipNext(1)
		return
	}
	p.base.emit(EventPlayNextQueueChange)
}

// Forwarded base operations.

func (p *PlayNextEngine) SetSetList(list []TrackID, current *TrackID) {
	p.base.SetSetList(list, current)
}

func (p *PlayNextEngine) PrependTracks(tracks []TrackID) error { return p.base.PrependTracks(tracks) }
func (p *PlayNextEngine) AppendTracks(tracks []TrackID) error  { return p.base.AppendTracks(tracks) }
func (p *PlayNextEngine) SetRepeatMode(m RepeatMode)           { p.base.SetRepeatMode(m) }
func (p *PlayNextEngine) RepeatMode() RepeatMode               { return p.base.RepeatMode() }
func (p *PlayNextEngine) SetShuffle(on bool)                   { p.base.SetShuffle(on) }
func (p *PlayNextEngine) Shuffle() bool                        { return p.base.Shuffle() }
func (p *PlayNextEngine) Queue() []TrackID                     { return p.base.Queue() }
func (p *PlayNextEngine) History() []TrackID                   { return p.base.History() }
func (p *PlayNextEngine) Export() State                        { return p.base.Export() }

func (p *PlayNextEngine) Import(st State, emitTrackChange bool) {
	p.base.Import(st, emitTrackChange)
}

// On registers a listener on the shared notifier, covering both base events
// and EventPlayNextQueueChange.
func (p *PlayNextEngine) On(e Event, fn func()) (cancel func()) { return p.base.On(e, fn) }

func (p *PlayNextEngine) pushHistory(t TrackID) {
	p.history = append(p.history, t)
	if len(p.history) > p.base.maxHistorySize {
		p.history = p.history[len(p.history)-p.base.maxHistorySize:]
	}
}
