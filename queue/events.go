package queue

// Event identifies a kind of engine change notification.
type Event int

const (
	EventTrackChange Event = iota
	EventQueueChange
	EventRepeatChange
	EventShuffleChange
	EventPlayNextQueueChange
)

// notifier fans engine changes out to registered listeners. Listeners are
// invoked inline at the end of the mutating call, in registration order.
type notifier struct {
	nextID    int
	listeners map[Event]map[int]func()
}

// On registers fn for the given event kind. The returned cancel function
// removes the registration and is safe to call more than once.
func (n *notifier) On(e Event, fn func()) (cancel func()) {
	if n.listeners == nil {
		n.listeners = make(map[Event]map[int]func())
	}
	if n.listeners[e] == nil {
		n.listeners[e] = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.listeners[e][id] = fn
	return func() {
		delete(n.listeners[e], id)
	}
}

func (n *notifier) emit(e Event) {
	ids := make([]int, 0, len(n.listeners[e]))
	for id := range n.listeners[e] {
		ids = append(ids, id)
	}
	// Stable order so listeners fire in registration order.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		if fn, ok := n.listeners[e][id]; ok {
			fn()
		}
	}
}
