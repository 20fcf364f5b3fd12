package leaderboard

import (
	"encoding/json"
	"time"
)

// EventType classifies a RankEvent.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeSetRank
	EventTypeRemoveRank
	EventTypeClear
)

// EventVersion lets consumers of an audit log detect schema changes.
const EventVersion uint8 = 1

// RankEvent is one audited mutation of a leaderboard.
type RankEvent struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Sequence  uint64    `json:"sequence"`
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
}

// String returns a human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypeSetRank:
		return "set_rank"
	case EventTypeRemoveRank:
		return "remove_rank"
	case EventTypeClear:
		return "clear"
	default:
		return "unknown"
	}
}

// SetRankPayload describes a set_rank mutation.
type SetRankPayload struct {
	Score int64 `json:"score"`
}

// encodePayload marshals a payload to JSON, returning nil on failure
// rather than propagating an error an audit caller can't usefully act on.
func encodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewRankEvent creates a RankEvent with the current timestamp and the
// appropriate payload for its type.
func NewRankEvent(eventType EventType, key string, score int64) RankEvent {
	var payload []byte
	if eventType == EventTypeSetRank {
		payload = encodePayload(SetRankPayload{Score: score})
	}

	return RankEvent{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Key:       key,
		Payload:   payload,
	}
}
