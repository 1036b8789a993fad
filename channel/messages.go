package channel

import (
	"encoding/json"
	"fmt"

	"Harmony/queue"
)

// TrackSnapshot is the canonical queue broadcast to all of a user's
// sessions: the exported queue engine state plus a display label.
type TrackSnapshot struct {
	queue.State
	SetListName string `json:"setListName"`
}

// hostClaimKind enumerates who a setState message nominates as host.
type hostClaimKind int

const (
	hostNone hostClaimKind = iota // field absent: host unchanged
	hostSelf                      // literal true: sender claims host
	hostByID                      // session id string
)

// HostClaim is the tagged form of the wire field `host: true | <sessionId>`.
// The zero value means the field was absent.
type HostClaim struct {
	kind      hostClaimKind
	sessionID string
}

// UnmarshalJSON accepts `true` or a session id string. `false` and `null`
// are treated as no claim.
func (h *HostClaim) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		if t {
			h.kind = hostSelf
		} else {
			h.kind = hostNone
		}
	case string:
		h.kind = hostByID
		h.sessionID = t
	case nil:
		h.kind = hostNone
	default:
		return fmt.Errorf("host claim must be true or a session id, got %T", v)
	}
	return nil
}

type setSessionMessage struct {
	Type     string      `json:"type"`
	Activate bool        `json:"activate,omitempty"`
	Info     *DeviceInfo `json:"info,omitempty"`
	DeviceID *string     `json:"deviceId,omitempty"`
	Volume   *float64    `json:"volume,omitempty"`
}

type setStateMessage struct {
	Type        string         `json:"type"`
	Host        HostClaim      `json:"host"`
	State       *PlaybackState `json:"state,omitempty"`
	Tracks      *TrackSnapshot `json:"tracks,omitempty"`
	TrackChange *bool          `json:"trackChange,omitempty"`
	Volume      *float64       `json:"volume,omitempty"`
}

type connectedMessage struct {
	Type     string         `json:"type"`
	Sessions []SessionView  `json:"sessions"`
	PbState  *PlaybackState `json:"pbState"`
	PbTracks *TrackSnapshot `json:"pbTracks"`
}

type updatedMessage struct {
	Type          string         `json:"type"`
	ByHost        bool           `json:"byHost"`
	ByYou         bool           `json:"byYou"`
	Sessions      []SessionView  `json:"sessions,omitempty"`
	PbState       *PlaybackState `json:"pbState,omitempty"`
	PbTracks      *TrackSnapshot `json:"pbTracks,omitempty"`
	PbTrackChange *bool          `json:"pbTrackChange,omitempty"`
}

// parseClientMessage decodes one inbound JSON frame into its typed form.
func parseClientMessage(data []byte) (any, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	switch head.Type {
	case "setSession":
		var msg setSessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed setSession: %w", err)
		}
		return &msg, nil
	case "setState":
		var msg setStateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed setState: %w", err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", head.Type)
	}
}
