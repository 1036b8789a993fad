package channel

import (
	"errors"
	"sync"

	"github.com/Strum355/log"

	"Harmony/queue"
	"Harmony/utils"
)

// Registry owns the per-user channels: one is created on a user's first
// connection and removed once its roster empties. Channels for different
// users share nothing and run concurrently.
type Registry struct {
	mu       sync.Mutex
	channels map[string]*UserChannel

	// TrackChanged, when set, is called from a channel goroutine whenever a
	// track snapshot with trackChange lands; implementations must not block.
	TrackChanged func(userID string, trackID queue.TrackID, setListName string)

	// ChannelClosed, when set, is called after a user's channel is destroyed.
	ChannelClosed func(userID string)

	// Clock in epoch milliseconds, replaceable in tests.
	now func() int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*UserChannel),
		now:      utils.NowMillis,
	}
}

// Client is a connected device's handle onto its user channel.
type Client struct {
	ch        *UserChannel
	sessionID string
}

// SessionID returns the random id assigned to this connection's session.
func (c *Client) SessionID() string { return c.sessionID }

// Deliver forwards one inbound frame to the channel. Delivery is
// non-blocking; a frame arriving faster than the channel drains is dropped
// and logged.
func (c *Client) Deliver(data []byte) {
	select {
	case c.ch.inbox <- frameEvent{sessionID: c.sessionID, data: data}:
	default:
		log.WithFields(log.Fields{
			"user":    c.ch.userID,
			"session": c.sessionID,
		}).Error("channel inbox full, dropping frame")
	}
}

// Close removes this connection's session from the channel.
func (c *Client) Close() {
	c.ch.inbox <- disconnectEvent{sessionID: c.sessionID}
}

// ErrMissingDescriptor rejects connections whose admission record is
// incomplete.
var ErrMissingDescriptor = errors.New("channel: descriptor missing user or device id")

// Connect admits a pre-validated connection, creating the user's channel if
// it does not exist yet, and blocks until the session is registered.
func (r *Registry) Connect(desc Descriptor, conn Sender) (*Client, error) {
	if desc.UserID == "" || desc.DeviceID == "" {
		return nil, ErrMissingDescriptor
	}
	reply := make(chan string, 1)

	r.mu.Lock()
	ch := r.channels[desc.UserID]
	if ch == nil || ch.stopped {
		ch = newUserChannel(desc.UserID, r)
		r.channels[desc.UserID] = ch
		go ch.run()
	}
	// Enqueued under the lock so a draining channel cannot stop between the
	// lookup and the send.
	ch.inbox <- connectEvent{desc: desc, conn: conn, reply: reply}
	r.mu.Unlock()

	return &Client{ch: ch, sessionID: <-reply}, nil
}

// tryRemove retires a channel whose roster emptied, unless events snuck into
// its inbox in the meantime. Returns true when the channel may exit.
func (r *Registry) tryRemove(ch *UserChannel) bool {
	r.mu.Lock()
	if len(ch.inbox) > 0 {
		r.mu.Unlock()
		return false
	}
	ch.stopped = true
	delete(r.channels, ch.userID)
	r.mu.Unlock()

	log.WithFields(log.Fields{"user": ch.userID}).Info("user channel destroyed")
	if r.ChannelClosed != nil {
		r.ChannelClosed(ch.userID)
	}
	return true
}

func (r *Registry) trackChanged(userID string, trackID queue.TrackID, setListName string) {
	if r.TrackChanged != nil {
		r.TrackChanged(userID, trackID, setListName)
	}
}
