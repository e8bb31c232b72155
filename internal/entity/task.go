package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// TaskKind selects which generation pipeline a task runs through.
type TaskKind string

const (
	KindSlideDeck TaskKind = "slide_deck"
	KindPitchDeck TaskKind = "pitch_deck"
	KindDocument  TaskKind = "document"
)

func (k TaskKind) Valid() bool {
	switch k {
	case KindSlideDeck, KindPitchDeck, KindDocument:
		return true
	}
	return false
}

// Task is one paid request to produce a generated document or presentation.
// Rows are created pending by the request layer and owned by the worker from
// pickup until a terminal state. Terminal rows are kept for audit.
type Task struct {
	ID            int64           `json:"id"`
	UUID          uuid.UUID       `json:"uuid"`
	OwnerChatID   int64           `json:"owner_chat_id"`
	Kind          TaskKind        `json:"kind"`
	Params        json.RawMessage `json:"params"`
	Status        TaskStatus      `json:"status"`
	Progress      int             `json:"progress"`
	AmountCharged int64           `json:"amount_charged"`
	ResultPath    *string         `json:"result_path,omitempty"`
	ErrorDetail   *string         `json:"error_detail,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// SlideDeckParams drives the slide_deck pipeline.
type SlideDeckParams struct {
	Topic      string `json:"topic"`
	Details    string `json:"details,omitempty"`
	SlideCount int    `json:"slide_count"`
	Language   string `json:"language,omitempty"`
	ThemeID    string `json:"theme_id,omitempty"`
}

func (p *SlideDeckParams) Validate() error {
	if p.Topic == "" {
		return errors.New("topic is required")
	}
	if p.SlideCount < 1 || p.SlideCount > 75 {
		return fmt.Errorf("slide_count out of range: %d", p.SlideCount)
	}
	if p.Language == "" {
		p.Language = "uz"
	}
	return nil
}

// PitchDeckParams drives the pitch_deck pipeline. Answers carries the user's
// replies to the pitch questionnaire in question order.
type PitchDeckParams struct {
	Answers    []string `json:"answers"`
	SlideCount int      `json:"slide_count"`
	Language   string   `json:"language,omitempty"`
	ThemeID    string   `json:"theme_id,omitempty"`
}

func (p *PitchDeckParams) Validate() error {
	if len(p.Answers) == 0 {
		return errors.New("answers are required")
	}
	if p.SlideCount < 1 || p.SlideCount > 75 {
		return fmt.Errorf("slide_count out of range: %d", p.SlideCount)
	}
	if p.Language == "" {
		p.Language = "uz"
	}
	return nil
}

// DocumentParams drives the document pipeline (course works, referats).
type DocumentParams struct {
	WorkType  string `json:"work_type"`
	Topic     string `json:"topic"`
	Subject   string `json:"subject,omitempty"`
	Details   string `json:"details,omitempty"`
	PageCount int    `json:"page_count"`
	Format    string `json:"format"` // docx | pdf
	Language  string `json:"language,omitempty"`
}

func (p *DocumentParams) Validate() error {
	if p.Topic == "" {
		return errors.New("topic is required")
	}
	if p.PageCount < 1 || p.PageCount > 100 {
		return fmt.Errorf("page_count out of range: %d", p.PageCount)
	}
	switch p.Format {
	case "":
		p.Format = "pdf"
	case "docx", "pdf":
	default:
		return fmt.Errorf("unsupported format: %s", p.Format)
	}
	if p.WorkType == "" {
		p.WorkType = "mustaqil_ish"
	}
	if p.Language == "" {
		p.Language = "uz"
	}
	return nil
}

// DecodeParams parses and validates the raw payload for the given kind.
// The result is one of *SlideDeckParams, *PitchDeckParams, *DocumentParams.
func DecodeParams(kind TaskKind, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty params")
	}
	switch kind {
	case KindSlideDeck:
		var p SlideDeckParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode slide_deck params: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return &p, nil
	case KindPitchDeck:
		var p PitchDeckParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode pitch_deck params: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return &p, nil
	case KindDocument:
		var p DocumentParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode document params: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown task kind: %s", kind)
	}
}
