package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type PongTestCase struct {
	input    string
	nowMs    int64
	expected string
	isPing   bool
}

func TestPongFor(t *testing.T) {
	tests := []PongTestCase{
		{"ping:abc", 1700000000000, "pong:abc:1700000000000", true},
		{"ping:", 42, "pong::42", true},
		{"ping:with:colons", 1, "pong:with:colons:1", true},
		{`{"type":"setState"}`, 1, "", false},
		{"pong:abc:1", 1, "", false},
		{"", 1, "", false},
	}

	for _, tt := range tests {
		pong, ok := pongFor([]byte(tt.input), tt.nowMs)
		assert.Equal(t, tt.isPing, ok, tt.input)
		assert.Equal(t, tt.expected, pong, tt.input)
	}
}

func TestWSClient_SendFailsWhenBufferFull(t *testing.T) {
	c := &wsClient{
		out:  make(chan frame, 1),
		done: make(chan struct{}),
	}

	assert.NoError(t, c.Send(map[string]string{"type": "updated"}))
	assert.Error(t, c.Send(map[string]string{"type": "updated"}))
}

func TestWSClient_SendFailsAfterClose(t *testing.T) {
	c := &wsClient{
		out:  make(chan frame, 8),
		done: make(chan struct{}),
	}
	close(c.done)

	assert.Error(t, c.Send(map[string]string{"type": "updated"}))
}

func TestWSClient_SendRejectsUnmarshalable(t *testing.T) {
	c := &wsClient{
		out:  make(chan frame, 8),
		done: make(chan struct{}),
	}

	assert.Error(t, c.Send(func() {}))
}
