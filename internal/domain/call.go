package domain

import "time"

// Call status values. Transitions to completed/missed belong to teardown
// logic outside this server; we only ever create records as active.
const (
	CallStatusActive    = "active"
	CallStatusCompleted = "completed"
	CallStatusMissed    = "missed"
)

// CallRecord describes one call between a pair of identities, addressable by
// room and by its human-readable session identifier.
type CallRecord struct {
	SessionID               string    `bson:"sessionId" json:"sessionId"`
	Room                    RoomName  `bson:"room" json:"room"`
	ParticipantDisplayNames []string  `bson:"participantDisplayNames" json:"participantDisplayNames"`
	ParticipantIdentities   []string  `bson:"participantIdentities" json:"participantIdentities"`
	Type                    string    `bson:"type" json:"type"`
	Status                  string    `bson:"status" json:"status"`
	DurationSeconds         int64     `bson:"durationSeconds" json:"durationSeconds"`
	CreatedAt               time.Time `bson:"createdAt" json:"createdAt"`
	EndedAt                 time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
}
