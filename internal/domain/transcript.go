package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Segment is one time-coded span of transcript text. Word-level segments set
// Word to the single token.
type Segment struct {
	Text       string  `json:"text"`
	StartMS    int64   `json:"start_ms"`
	EndMS      int64   `json:"end_ms"`
	Word       string  `json:"word,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Utterance is a speaker-attributed span.
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	StartMS    int64   `json:"start_ms"`
	EndMS      int64   `json:"end_ms"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Chapter is an auto-detected topic segment. Time-anchored generation tasks
// require at least one non-empty chapter.
type Chapter struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Gist     string `json:"gist,omitempty"`
	StartMS  int64  `json:"start_ms"`
	EndMS    int64  `json:"end_ms"`
}

// Transcript is the canonical normalized transcription output. Immutable once
// written; every generation task reads it and none mutates it.
type Transcript struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"project_id"`

	Text     string `gorm:"column:text;not null" json:"text"`
	Language string `gorm:"column:language" json:"language,omitempty"`
	Provider string `gorm:"column:provider;not null" json:"provider"`

	Segments   datatypes.JSONType[[]Segment]   `gorm:"column:segments;type:jsonb" json:"segments"`
	Utterances datatypes.JSONType[[]Utterance] `gorm:"column:utterances;type:jsonb" json:"utterances"`
	Chapters   datatypes.JSONType[[]Chapter]   `gorm:"column:chapters;type:jsonb" json:"chapters"`

	AudioDurationSecs float64   `gorm:"column:audio_duration_secs" json:"audio_duration_secs,omitempty"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (Transcript) TableName() string { return "transcript" }

func (t *Transcript) HasText() bool {
	return t != nil && strings.TrimSpace(t.Text) != ""
}

// HasChapters reports whether at least one chapter carries usable content.
func (t *Transcript) HasChapters() bool {
	if t == nil {
		return false
	}
	for _, ch := range t.Chapters.Data() {
		if strings.TrimSpace(ch.Headline) != "" || strings.TrimSpace(ch.Summary) != "" {
			return true
		}
	}
	return false
}
