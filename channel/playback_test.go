package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type PositionTestCase struct {
	name     string
	state    PlaybackState
	nowMs    int64
	expected float64
}

func TestPosition(t *testing.T) {
	base := PlaybackState{Playing: true, Duration: 200, StartPosition: 10, StartedAt: 1_000_000}

	tests := []PositionTestCase{
		{"at start", base, 1_000_000, 10},
		{"five seconds in", base, 1_005_000, 15},
		{"clamped to duration", base, 1_500_000, 200},
		{"paused holds position", PlaybackState{Playing: false, Duration: 200, StartPosition: 42, StartedAt: 1_000_000}, 9_999_999, 42},
		{"never negative", PlaybackState{Playing: true, Duration: 200, StartPosition: 0, StartedAt: 1_000_000}, 999_000, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.Position(tt.nowMs), tt.name)
	}
}

func TestPosition_NonDecreasingWhilePlaying(t *testing.T) {
	state := PlaybackState{Playing: true, Duration: 300, StartPosition: 20, StartedAt: 0}

	prev := state.Position(0)
	for now := int64(1000); now <= 400_000; now += 1000 {
		pos := state.Position(now)
		assert.GreaterOrEqual(t, pos, prev)
		assert.LessOrEqual(t, pos, state.Duration)
		prev = pos
	}
}

func TestClamped(t *testing.T) {
	assert.Equal(t, 200.0, PlaybackState{Duration: 200, StartPosition: 500}.clamped().StartPosition)
	assert.Equal(t, 0.0, PlaybackState{Duration: 200, StartPosition: -5}.clamped().StartPosition)
	assert.Equal(t, 60.0, PlaybackState{Duration: 200, StartPosition: 60}.clamped().StartPosition)
}

func TestPausedAt(t *testing.T) {
	state := PlaybackState{Playing: true, Duration: 200, StartPosition: 10, StartedAt: 1_000_000}

	frozen := state.pausedAt(1_005_000)

	assert.False(t, frozen.Playing)
	assert.Equal(t, 15.0, frozen.StartPosition)
	assert.Equal(t, int64(1_005_000), frozen.StartedAt)
	assert.Equal(t, 200.0, frozen.Duration)

	// Frozen state reads the same position at any later time.
	assert.Equal(t, 15.0, frozen.Position(2_000_000))
}
