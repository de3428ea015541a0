package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/larsks/ledremote/internal/controller"
	"github.com/rs/zerolog/log"
)

// Publisher is the subset of Client used to publish status.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) error
}

// OutputEvent describes one output in a StatusEvent.
type OutputEvent struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// StatusEvent is the retained message published after every change.
type StatusEvent struct {
	Status    int32         `json:"status"`
	Outputs   []OutputEvent `json:"outputs"`
	Timestamp string        `json:"timestamp"`
}

// StatusPublisher publishes controller snapshots:
//
//	<prefix>/status         JSON StatusEvent (retained)
//	<prefix>/output/<name>  "on" or "off" (retained)
type StatusPublisher struct {
	publisher Publisher
	prefix    string
	now       func() time.Time
}

// NewStatusPublisher creates a controller observer publishing under prefix.
func NewStatusPublisher(p Publisher, prefix string) *StatusPublisher {
	return &StatusPublisher{publisher: p, prefix: prefix, now: time.Now}
}

// NewStatusEvent converts a snapshot to its published form.
func NewStatusEvent(snap controller.Snapshot, ts time.Time) StatusEvent {
	event := StatusEvent{
		Status:    int32(snap.Status),
		Outputs:   make([]OutputEvent, len(snap.Names)),
		Timestamp: ts.Format(time.RFC3339),
	}
	for i, name := range snap.Names {
		event.Outputs[i] = OutputEvent{Name: name, State: stateName(snap.States[i])}
	}
	return event
}

func stateName(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// StatusChanged implements controller.Observer. Publish failures are
// logged; they never interrupt the command channel.
func (sp *StatusPublisher) StatusChanged(snap controller.Snapshot) {
	payload, err := json.Marshal(NewStatusEvent(snap, sp.now()))
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal status event")
		return
	}

	if err := sp.publisher.Publish(sp.prefix+"/status", 0, true, payload); err != nil {
		log.Warn().Err(err).Msg("failed to publish status")
		return
	}

	for i, name := range snap.Names {
		topic := fmt.Sprintf("%s/output/%s", sp.prefix, name)
		if err := sp.publisher.Publish(topic, 0, true, stateName(snap.States[i])); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("failed to publish output state")
		}
	}
}
