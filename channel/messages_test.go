package channel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostClaim_Unmarshal(t *testing.T) {
	var msg setStateMessage

	assert.NoError(t, json.Unmarshal([]byte(`{"type":"setState","host":true}`), &msg))
	assert.Equal(t, hostSelf, msg.Host.kind)

	msg = setStateMessage{}
	assert.NoError(t, json.Unmarshal([]byte(`{"type":"setState","host":"abc-123"}`), &msg))
	assert.Equal(t, hostByID, msg.Host.kind)
	assert.Equal(t, "abc-123", msg.Host.sessionID)

	msg = setStateMessage{}
	assert.NoError(t, json.Unmarshal([]byte(`{"type":"setState"}`), &msg))
	assert.Equal(t, hostNone, msg.Host.kind)

	msg = setStateMessage{}
	assert.NoError(t, json.Unmarshal([]byte(`{"type":"setState","host":false}`), &msg))
	assert.Equal(t, hostNone, msg.Host.kind)

	msg = setStateMessage{}
	assert.Error(t, json.Unmarshal([]byte(`{"type":"setState","host":42}`), &msg))
}

func TestParseClientMessage(t *testing.T) {
	parsed, err := parseClientMessage([]byte(`{"type":"setSession","activate":true,"deviceId":"phone-1"}`))
	assert.NoError(t, err)
	session, ok := parsed.(*setSessionMessage)
	assert.True(t, ok)
	assert.True(t, session.Activate)
	assert.Equal(t, "phone-1", *session.DeviceID)

	parsed, err = parseClientMessage([]byte(`{"type":"setState","state":{"playing":true,"duration":200,"startPosition":10,"startedAt":1000}}`))
	assert.NoError(t, err)
	state, ok := parsed.(*setStateMessage)
	assert.True(t, ok)
	assert.True(t, state.State.Playing)
	assert.Equal(t, 200.0, state.State.Duration)

	_, err = parseClientMessage([]byte(`{"type":"unknown"}`))
	assert.Error(t, err)

	_, err = parseClientMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestTrackSnapshot_FlattensEngineState(t *testing.T) {
	data := []byte(`{"setList":["a","b"],"currentTrack":"a","queue":["b"],"repeatQueue":[],"history":[],"repeatMode":0,"shuffle":false,"setListName":"My Album"}`)

	var snap TrackSnapshot
	assert.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "My Album", snap.SetListName)
	assert.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "a", string(*snap.CurrentTrack))
	assert.Len(t, snap.SetList, 2)
}
