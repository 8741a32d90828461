package analyses

import (
	"time"

	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
)

// Analysis is one stored scoring run. Records are immutable once created.
type Analysis struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	FileName       string         `json:"fileName"`
	FileID         *string        `json:"fileId,omitempty"`
	Kind           prompt.Mode    `json:"analysisType"`
	Result         scoring.Result `json:"result"`
	JobTitle       string         `json:"jobTitle,omitempty"`
	Company        string         `json:"company,omitempty"`
	Location       string         `json:"location,omitempty"`
	JobDescription string         `json:"description,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
