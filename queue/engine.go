package queue

import (
	"errors"
	"math/rand"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// TrackID is an opaque track identifier supplied by the caller. The empty
// string means "no track".
type TrackID string

// RepeatMode controls what happens when playback reaches the end of the queue.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "off"
	}
}

// ParseRepeatMode converts a string to a RepeatMode.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "one":
		return RepeatOne
	case "all":
		return RepeatAll
	default:
		return RepeatOff
	}
}

// ErrInvalidOperation is returned when a queue mutation contradicts the
// current repeat mode.
var ErrInvalidOperation = errors.New("queue: operation invalid in current repeat mode")

// State is the full exportable snapshot of an Engine.
type State struct {
	SetList      []TrackID  `json:"setList"`
	CurrentTrack *TrackID   `json:"currentTrack,omitempty"`
	Queue        []TrackID  `json:"queue"`
	RepeatQueue  []TrackID  `json:"repeatQueue"`
	History      []TrackID  `json:"history"`
	RepeatMode   RepeatMode `json:"repeatMode"`
	Shuffle      bool       `json:"shuffle"`
}

// Engine is the deterministic playback-order state machine: a deduplicated
// set list, the near-term queue, a replenishing repeat queue, and a bounded
// back history. All operations are synchronous and single-threaded; change
// notifications fire inline at the end of each mutating call.
type Engine struct {
	notifier

	minQueueSize   int
	maxHistorySize int

	setList     []TrackID
	current     TrackID
	queue       []TrackID
	repeatQueue []TrackID
	history     []TrackID
	repeat      RepeatMode
	shuffle     bool
}

// NewEngine creates an empty engine with the given repeat-queue low-water
// mark and history cap.
func NewEngine(minQueueSize, maxHistorySize int) *Engine {
	if minQueueSize < 1 {
		minQueueSize = 1
	}
	if maxHistorySize < 1 {
		maxHistorySize = 1
	}
	return &Engine{
		minQueueSize:   minQueueSize,
		maxHistorySize: maxHistorySize,
	}
}

// NewEngineFromConfig creates an engine sized from viper configuration.
func NewEngineFromConfig() *Engine {
	return NewEngine(viper.GetInt("queue.min_size"), viper.GetInt("queue.max_history"))
}

// CurrentTrack returns the track currently playing, or "" if none.
func (e *Engine) CurrentTrack() TrackID { return e.current }

// SetList returns a copy of the deduplicated browsed list.
func (e *Engine) SetList() []TrackID { return append([]TrackID(nil), e.setList...) }

// Queue returns a copy of the near-term playback order.
func (e *Engine) Queue() []TrackID { return append([]TrackID(nil), e.queue...) }

// RepeatQueue returns a copy of the repeat loop buffer.
func (e *Engine) RepeatQueue() []TrackID { return append([]TrackID(nil), e.repeatQueue...) }

// History returns a copy of the back history, oldest first.
func (e *Engine) History() []TrackID { return append([]TrackID(nil), e.history...) }

// RepeatMode returns the current repeat mode.
func (e *Engine) RepeatMode() RepeatMode { return e.repeat }

// Shuffle reports whether shuffle is enabled.
func (e *Engine) Shuffle() bool { return e.shuffle }

// SetSetList replaces the browsed list. The list is deduplicated preserving
// first occurrence. When current is nil the existing current track is kept
// only if it is still present; an explicit current is adopted, or cleared if
// it is absent from the new list. Queue, repeat queue and history are reset
// and regenerated.
func (e *Engine) SetSetList(list []TrackID, current *TrackID) {
	e.setList = lo.Uniq(append([]TrackID(nil), list...))
	if current != nil {
		e.current = *current
	}
	if e.current != "" && !lo.Contains(e.setList, e.current) {
		e.current = ""
	}
	e.queue = nil
	e.repeatQueue = nil
	e.history = nil
	e.emit(EventTrackChange)
	e.rebuildQueue()
	e.emit(EventQueueChange)
}

// PrependTracks inserts tracks at the queue head. Fails when repeat mode is
// RepeatOne, where prepending has no meaning.
func (e *Engine) PrependTracks(tracks []TrackID) error {
	if e.repeat == RepeatOne {
		return ErrInvalidOperation
	}
	e.queue = append(append([]TrackID(nil), tracks...), e.queue...)
	e.emit(EventQueueChange)
	return nil
}

// AppendTracks inserts tracks at the queue tail. Fails when any repeat mode
// is enabled, since repeat already determines what follows.
func (e *Engine) AppendTracks(tracks []TrackID) error {
	if e.repeat != RepeatOff {
		return ErrInvalidOperation
	}
	e.queue = append(e.queue, tracks...)
	e.emit(EventQueueChange)
	return nil
}

// SkipNext advances n tracks. RepeatOne is upgraded to RepeatAll first. A
// non-positive n or an empty set list is a no-op.
func (e *Engine) SkipNext(n int) {
	if n <= 0 || len(e.setList) == 0 {
		return
	}
	if e.repeat == RepeatOne {
		e.setRepeat(RepeatAll)
	}
	for i := 0; i < n; i++ {
		if e.repeat != RepeatOff && len(e.queue) == 0 {
			e.moveRepeatBatch()
		}
		if e.current != "" {
			e.pushHistory(e.current)
		}
		if len(e.queue) > 0 {
			e.current = e.queue[0]
			e.queue = e.queue[1:]
		} else {
			e.current = ""
		}
	}
	e.emit(EventQueueChange)
	e.emit(EventTrackChange)
}

// SkipPrevious steps back n tracks, synthesizing a history when none exists.
// RepeatOne is upgraded to RepeatAll first. A non-positive n or an empty set
// list is a no-op.
func (e *Engine) SkipPrevious(n int) {
	if n <= 0 || len(e.setList) == 0 {
		return
	}
	if e.repeat == RepeatOne {
		e.setRepeat(RepeatAll)
	}
	for i := 0; i < n; i++ {
		if len(e.history) == 0 {
			e.synthesizeHistory()
		}
		if e.current != "" {
			e.queue = append([]TrackID{e.current}, e.queue...)
		}
		if last := len(e.history) - 1; last >= 0 {
			e.current = e.history[last]
			e.history = e.history[:last]
		} else {
			e.current = ""
		}
	}
	e.emit(EventQueueChange)
	e.emit(EventTrackChange)
}

// Next is the auto-advance variant for "track ended". Under RepeatOne the
// state is untouched and the caller restarts the same track itself, but
// listeners are still notified. Otherwise it behaves like SkipNext(1).
func (e *Engine) Next() {
	if e.repeat == RepeatOne {
		e.emit(EventQueueChange)
		e.emit(EventTrackChange)
		return
	}
	e.SkipNext(1)
}

// RemoveTracks filters every internal list, keeping tracks where keep is
// true. When the current track is removed, playback advances off it.
func (e *Engine) RemoveTracks(keep func(TrackID) bool) {
	before := len(e.setList) + len(e.queue) + len(e.repeatQueue) + len(e.history)
	e.setList = lo.Filter(e.setList, func(t TrackID, _ int) bool { return keep(t) })
	e.queue = lo.Filter(e.queue, func(t TrackID, _ int) bool { return keep(t) })
	e.repeatQueue = lo.Filter(e.repeatQueue, func(t TrackID, _ int) bool { return keep(t) })
	e.history = lo.Filter(e.history, func(t TrackID, _ int) bool { return keep(t) })
	after := len(e.setList) + len(e.queue) + len(e.repeatQueue) + len(e.history)
	if before == after {
		return
	}
	e.fillRepeatQueue()
	if e.current != "" && !keep(e.current) {
		e.SkipNext(1)
		return
	}
	e.emit(EventQueueChange)
}

// SetRepeatMode changes the repeat mode. Setting the same mode is a no-op.
func (e *Engine) SetRepeatMode(m RepeatMode) {
	if m == e.repeat {
		return
	}
	e.setRepeat(m)
}

func (e *Engine) setRepeat(m RepeatMode) {
	was := e.repeat
	e.repeat = m
	e.history = nil
	if was == RepeatOff && m != RepeatOff {
		e.fillRepeatQueue()
	}
	if m == RepeatOff {
		e.repeatQueue = nil
	}
	e.emit(EventRepeatChange)
}

// SetShuffle toggles shuffle. Setting the same value is a no-op; otherwise
// the queue and repeat queue are rebuilt and history is cleared.
func (e *Engine) SetShuffle(on bool) {
	if on == e.shuffle {
		return
	}
	e.shuffle = on
	e.rebuildQueue()
	e.emit(EventShuffleChange)
}

// Export snapshots the full engine state.
func (e *Engine) Export() State {
	st := State{
		SetList:     e.SetList(),
		Queue:       e.Queue(),
		RepeatQueue: e.RepeatQueue(),
		History:     e.History(),
		RepeatMode:  e.repeat,
		Shuffle:     e.shuffle,
	}
	if e.current != "" {
		cur := e.current
		st.CurrentTrack = &cur
	}
	return st
}

// Import replaces the engine state with a snapshot, notifying listeners of
// every aspect. The TrackChange notification can be suppressed when the
// caller knows the current track is unchanged.
func (e *Engine) Import(st State, emitTrackChange bool) {
	e.setList = append([]TrackID(nil), st.SetList...)
	e.queue = append([]TrackID(nil), st.Queue...)
	e.repeatQueue = append([]TrackID(nil), st.RepeatQueue...)
	e.history = append([]TrackID(nil), st.History...)
	e.repeat = st.RepeatMode
	e.shuffle = st.Shuffle
	e.current = ""
	if st.CurrentTrack != nil {
		e.current = *st.CurrentTrack
	}
	e.emit(EventQueueChange)
	e.emit(EventRepeatChange)
	e.emit(EventShuffleChange)
	if emitTrackChange {
		e.emit(EventTrackChange)
	}
}

// rebuildQueue regenerates the queue and repeat queue as if shuffle had just
// changed: shuffled set list minus the current track with shuffle on, the
// set list tail after the current track with shuffle off.
func (e *Engine) rebuildQueue() {
	e.history = nil
	if e.shuffle {
		q := lo.Filter(e.setList, func(t TrackID, _ int) bool { return t != e.current })
		shuffleTracks(q)
		e.queue = q
	} else if idx := lo.IndexOf(e.setList, e.current); e.current != "" && idx >= 0 {
		e.queue = append([]TrackID(nil), e.setList[idx+1:]...)
	} else {
		e.queue = append([]TrackID(nil), e.setList...)
	}
	e.repeatQueue = nil
	e.fillRepeatQueue()
}

// moveRepeatBatch shifts one set-list-sized batch from the repeat queue into
// the queue and tops the repeat queue back up.
func (e *Engine) moveRepeatBatch() {
	k := min(len(e.setList), len(e.repeatQueue))
	e.queue = append(e.queue, e.repeatQueue[:k]...)
	e.repeatQueue = append([]TrackID(nil), e.repeatQueue[k:]...)
	e.fillRepeatQueue()
}

// fillRepeatQueue appends set-list copies until the repeat queue reaches the
// low-water mark. With shuffle on, each copy is shuffled and a track that
// would immediately repeat across the loop boundary is swapped away.
func (e *Engine) fillRepeatQueue() {
	if e.repeat == RepeatOff || len(e.setList) == 0 {
		return
	}
	for len(e.repeatQueue) < e.minQueueSize {
		batch := append([]TrackID(nil), e.setList...)
		if e.shuffle {
			shuffleTracks(batch)
			if n := len(e.repeatQueue); n > 0 && len(batch) > 1 && batch[0] == e.repeatQueue[n-1] {
				j := 1 + rand.Intn(len(batch)-1)
				batch[0], batch[j] = batch[j], batch[0]
			}
		}
		e.repeatQueue = append(e.repeatQueue, batch...)
	}
}

// synthesizeHistory builds a one-off history when skipping back past what
// was recorded. With shuffle and repeat on, the whole set list is shuffled,
// current track included, then an immediate repeat at the tail is swapped
// away. Otherwise the history becomes the set-list prefix before the current
// track, or the whole list when there is no current track; a current track
// sitting first only wraps when repeat is enabled.
func (e *Engine) synthesizeHistory() {
	if e.shuffle && e.repeat != RepeatOff {
		h := append([]TrackID(nil), e.setList...)
		shuffleTracks(h)
		if n := len(h); n > 1 && h[n-1] == e.current {
			j := rand.Intn(n - 1)
			h[n-1], h[j] = h[j], h[n-1]
		}
		e.history = h
		return
	}
	idx := lo.IndexOf(e.setList, e.current)
	switch {
	case e.current != "" && idx > 0:
		e.history = append([]TrackID(nil), e.setList[:idx]...)
	case e.current == "" || idx < 0:
		e.history = append([]TrackID(nil), e.setList...)
	case e.repeat != RepeatOff:
		e.history = append([]TrackID(nil), e.setList...)
	}
}

func (e *Engine) pushHistory(t TrackID) {
	e.history = append(e.history, t)
	if len(e.history) > e.maxHistorySize {
		e.history = e.history[len(e.history)-e.maxHistorySize:]
	}
}

func shuffleTracks(tracks []TrackID) {
	rand.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})
}
