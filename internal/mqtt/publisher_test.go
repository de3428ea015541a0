package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/larsks/ledremote/internal/controller"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic    string
	retained bool
	payload  any
}

type fakePublisher struct {
	messages []message
	err      error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{topic: topic, retained: retained, payload: payload})
	return nil
}

func testSnapshot() controller.Snapshot {
	states := []bool{true, false, false}
	return controller.Snapshot{
		Names:  []string{"red", "green", "blue"},
		States: states,
		Status: protocol.StatusFromStates(states),
	}
}

func TestNewStatusEvent(t *testing.T) {
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(NewStatusEvent(testSnapshot(), ts))
	require.NoError(t, err)

	expected := `{"status":22,"outputs":[{"name":"red","state":"on"},{"name":"green","state":"off"},{"name":"blue","state":"off"}],"timestamp":"2023-01-01T12:00:00Z"}`
	assert.JSONEq(t, expected, string(data))
}

func TestStatusPublisher(t *testing.T) {
	fp := &fakePublisher{}
	sp := NewStatusPublisher(fp, "ledremote")
	sp.now = func() time.Time { return time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC) }

	sp.StatusChanged(testSnapshot())

	require.Len(t, fp.messages, 4)
	assert.Equal(t, "ledremote/status", fp.messages[0].topic)
	assert.True(t, fp.messages[0].retained)
	assert.Equal(t, "ledremote/output/red", fp.messages[1].topic)
	assert.Equal(t, "on", fp.messages[1].payload)
	assert.Equal(t, "ledremote/output/blue", fp.messages[3].topic)
	assert.Equal(t, "off", fp.messages[3].payload)
}

func TestStatusPublisherError(t *testing.T) {
	fp := &fakePublisher{err: ErrNotConnected}
	sp := NewStatusPublisher(fp, "ledremote")

	// must not panic or block
	sp.StatusChanged(testSnapshot())
	assert.Empty(t, fp.messages)
}

func TestValidateServerURL(t *testing.T) {
	assert.NoError(t, ValidateServerURL("mqtt://localhost:1883"))
	assert.ErrorIs(t, ValidateServerURL("http://localhost:1883"), ErrInvalidServerURL)
	assert.ErrorIs(t, ValidateServerURL("invalid-url"), ErrInvalidServerURL)

	_, err := NewClient(Config{ServerURL: "http://localhost:1883"})
	assert.ErrorIs(t, err, ErrInvalidServerURL)
}

func TestClientNotConnected(t *testing.T) {
	c := &Client{}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Publish("topic", 0, false, "x"), ErrNotConnected)
	c.Disconnect(0)
}
