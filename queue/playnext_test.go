package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPlayNext() *PlayNextEngine {
	e := newTestEngine()
	e.SetSetList([]TrackID{"a", "b", "c", "d"}, track("a"))
	return NewPlayNextEngine(e)
}

func TestPlayNext_CurrentTrackFallsThrough(t *testing.T) {
	p := newTestPlayNext()

	assert.Equal(t, TrackID("a"), p.CurrentTrack())
}

func TestPlayNext_AppendAndSkipOverrides(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c", "d"})

	p.SkipNext(1)

	assert.Equal(t, TrackID("c"), p.CurrentTrack())
	assert.Equal(t, []TrackID{"d"}, p.PlayNextQueue())
	// Base engine untouched while the play-next queue holds out.
	assert.Equal(t, TrackID("a"), p.base.CurrentTrack())
}

func TestPlayNext_SkipBuildsOwnHistory(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c", "d"})

	p.SkipNext(2)

	assert.Equal(t, TrackID("d"), p.CurrentTrack())
	assert.Equal(t, []TrackID{"c"}, p.PlayNextHistory())
}

func TestPlayNext_SkipPreviousThroughHistory(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c", "d"})
	p.SkipNext(2)

	p.SkipPrevious(1)

	assert.Equal(t, TrackID("c"), p.CurrentTrack())
	assert.Equal(t, []TrackID{"d"}, p.PlayNextQueue())
	assert.Empty(t, p.PlayNextHistory())
}

func TestPlayNext_ForwardExhaustionClearsHistoryAndDelegates(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c"})

	p.SkipNext(2)

	// One step consumed the play-next queue, the second delegated to the
	// base engine; the play-next history is gone and so is the override.
	assert.Empty(t, p.PlayNextHistory())
	assert.Empty(t, p.PlayNextQueue())
	assert.Equal(t, TrackID("b"), p.CurrentTrack())
	assert.Equal(t, TrackID("b"), p.base.CurrentTrack())
}

func TestPlayNext_BackwardExhaustionKeepsPlayNextQueue(t *testing.T) {
	p := newTestPlayNext()
	p.base.SkipNext(1) // current b, history [a]
	p.AppendToPlayNextQueue([]TrackID{"d"})
	p.SkipNext(1) // override d

	p.SkipPrevious(2)

	// First step pushed the override back onto the play-next queue; the
	// second delegated to the base engine. The play-next queue survives.
	assert.Equal(t, []TrackID{"d"}, p.PlayNextQueue())
	assert.Equal(t, TrackID("a"), p.CurrentTrack())
}

func TestPlayNext_RemoveFromPlayNextQueue(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"a", "b", "c", "d"})

	p.RemoveFromPlayNextQueue(1, 2)

	assert.Equal(t, []TrackID{"a", "d"}, p.PlayNextQueue())

	p.RemoveFromPlayNextQueue(1, 10)
	assert.Equal(t, []TrackID{"a"}, p.PlayNextQueue())

	p.RemoveFromPlayNextQueue(5, 1)
	assert.Equal(t, []TrackID{"a"}, p.PlayNextQueue())
}

func TestPlayNext_RemoveTracksFiltersAllLayers(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c", "d", "c"})
	p.SkipNext(1) // override c, play-next [d c]

	p.RemoveTracks(func(id TrackID) bool { return id != "d" })

	assert.Equal(t, []TrackID{"c"}, p.PlayNextQueue())
	assert.Equal(t, TrackID("c"), p.CurrentTrack())
	assert.NotContains(t, p.base.SetList(), TrackID("d"))
}

func TestPlayNext_RemoveTracksEvictsOverride(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c", "d"})
	p.SkipNext(1) // override c

	p.RemoveTracks(func(id TrackID) bool { return id != "c" })

	// Override c was removed, so playback advanced onto the next play-next
	// entry.
	assert.Equal(t, TrackID("d"), p.CurrentTrack())
}

func TestPlayNext_RepeatOneUpgradesBeforeSkipping(t *testing.T) {
	p := newTestPlayNext()
	p.SetRepeatMode(RepeatOne)
	p.AppendToPlayNextQueue([]TrackID{"c"})

	p.SkipNext(1)

	assert.Equal(t, RepeatAll, p.RepeatMode())
	assert.Equal(t, TrackID("c"), p.CurrentTrack())
}

func TestPlayNext_NextRepeatOneLeavesStateAlone(t *testing.T) {
	p := newTestPlayNext()
	p.AppendToPlayNextQueue([]TrackID{"c"})
	p.SetRepeatMode(RepeatOne)
	trackChanges := 0
	p.On(EventTrackChange, func() { trackChanges++ })

	p.Next()

	assert.Equal(t, 1, trackChanges)
	assert.Equal(t, []TrackID{"c"}, p.PlayNextQueue())
	assert.Equal(t, TrackID("a"), p.CurrentTrack())
}

func TestPlayNext_EmitsPlayNextQueueChange(t *testing.T) {
	p := newTestPlayNext()
	changes := 0
	p.On(EventPlayNextQueueChange, func() { changes++ })

	p.AppendToPlayNextQueue([]TrackID{"b", "c"})
	p.SkipNext(1)
	p.RemoveFromPlayNextQueue(0, 1)

	assert.Equal(t, 3, changes)
}
