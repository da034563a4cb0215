package domain

import "time"

// TranscriptRecord is one persisted caption. Immutable after creation.
type TranscriptRecord struct {
	SpeakerDisplayName string    `bson:"speakerDisplayName" json:"speakerDisplayName"`
	Text               string    `bson:"text" json:"text"`
	LanguageLabel      string    `bson:"languageLabel" json:"languageLabel"`
	Room               RoomName  `bson:"room" json:"room"`
	SessionID          string    `bson:"sessionId" json:"sessionId"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
}
