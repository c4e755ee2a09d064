package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"streamtally/internal/core"
)

// RoutingKeyActivityAppended routes ActivityAppendedMessage.
const RoutingKeyActivityAppended = "activity.appended"

// ActivityAppendedMessage announces one new activity on a stream log. It
// carries the log header and the full activity so consumers never need to
// read the store.
type ActivityAppendedMessage struct {
	StreamID     string        `json:"streamId"`
	StreamerName string        `json:"streamerName"`
	Date         core.Date     `json:"date"`
	StreamTitle  string        `json:"streamTitle"`
	Activity     core.Activity `json:"activity"`
	PublishedAt  time.Time     `json:"publishedAt"`
}

func NewActivityAppendedMessage(l core.StreamLog, a core.Activity) *ActivityAppendedMessage {
	return &ActivityAppendedMessage{
		StreamID:     l.ID,
		StreamerName: l.StreamerName,
		Date:         l.Date,
		StreamTitle:  l.StreamTitle,
		Activity:     a,
		PublishedAt:  time.Now().UTC(),
	}
}

// Header returns the stream log header carried by the message.
func (m *ActivityAppendedMessage) Header() core.Header {
	return core.Header{StreamerName: m.StreamerName, Date: m.Date, StreamTitle: m.StreamTitle}
}

// Validate rejects messages a consumer cannot act on.
func (m *ActivityAppendedMessage) Validate() error {
	if m.StreamID == "" {
		return errors.New("missing stream id")
	}
	if err := m.Header().Validate(); err != nil {
		return err
	}
	if m.Activity.ID == "" {
		return errors.New("missing activity id")
	}
	return m.Activity.Payload().Validate()
}

func (m *ActivityAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ActivityAppendedMessageFromJSON(data []byte) (*ActivityAppendedMessage, error) {
	var msg ActivityAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
