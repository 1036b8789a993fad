package channel

// DeviceInfo describes a connected device as supplied at admission time.
type DeviceInfo struct {
	Type     string `json:"type,omitempty"`
	Platform string `json:"platform,omitempty"`
	Client   string `json:"client,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Sender delivers one outbound message to a connected device. Sends are
// best-effort: an error is logged by the channel and never retried.
type Sender interface {
	Send(v any) error
}

// Session is one connected device's registration within a user channel.
// It is owned exclusively by the channel goroutine and discarded on
// disconnect.
type Session struct {
	ID              string
	DeviceID        string
	Info            DeviceInfo
	Volume          float64
	LastActivatedAt int64

	conn Sender

	// Set by setSession{activate:true}, consumed by the session's next
	// setState, which is then answered privately instead of broadcast.
	freshlyActivated bool
}

// SessionView is a session as rendered for one particular recipient.
type SessionView struct {
	You             bool       `json:"you"`
	Host            bool       `json:"host"`
	ID              string     `json:"id"`
	DeviceID        string     `json:"deviceId"`
	Info            DeviceInfo `json:"info"`
	Volume          float64    `json:"volume"`
	LastActivatedAt int64      `json:"lastActivatedAt"`
}
