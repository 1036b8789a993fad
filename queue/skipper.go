package queue

// Skipper is the playback-advance surface shared by Engine and
// PlayNextEngine, letting callers drive either layer interchangeably.
type Skipper interface {
	CurrentTrack() TrackID
	SkipNext(n int)
	SkipPrevious(n int)
	Next()
	RemoveTracks(keep func(TrackID) bool)
	On(e Event, fn func()) (cancel func())
}

var (
	_ Skipper = (*Engine)(nil)
	_ Skipper = (*PlayNextEngine)(nil)
)
