package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReportKind string

const (
	ReportPresent   ReportKind = "present"
	ReportAbsent    ReportKind = "absent"
	ReportCondition ReportKind = "condition"
)

func ParseReportKind(s string) (ReportKind, bool) {
	switch ReportKind(s) {
	case ReportPresent, ReportAbsent, ReportCondition:
		return ReportKind(s), true
	default:
		return "", false
	}
}

// Report is a user observation about a station. Present/absent reports flip
// the station's verification status; condition reports only carry a comment.
type Report struct {
	ID        uuid.UUID  `json:"id"`
	StationID uuid.UUID  `json:"station_id"`
	UserID    *int64     `json:"user_id,omitempty"`
	Kind      ReportKind `json:"kind"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CreateReportRequest struct {
	Kind    string `json:"kind"`
	Comment string `json:"comment,omitempty"`
}

func (r *CreateReportRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Comment = strings.TrimSpace(r.Comment)
}

func (r *CreateReportRequest) Validate() error {
	if _, ok := ParseReportKind(r.Kind); !ok {
		return fmt.Errorf("kind must be one of present, absent, condition")
	}
	if len(r.Comment) > 2000 {
		return fmt.Errorf("comment too long")
	}
	return nil
}

type Vote struct {
	StationID uuid.UUID `json:"station_id"`
	UserID    int64     `json:"user_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type VoteRequest struct {
	Value int `json:"value"`
}

func (r *VoteRequest) Validate() error {
	if r.Value != 1 && r.Value != -1 {
		return fmt.Errorf("value must be 1 or -1")
	}
	return nil
}

type CreatePhotoRequest struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

func (r *CreatePhotoRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("url is required")
	}
	switch r.ContentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return fmt.Errorf("unsupported content_type")
	}
	if r.SizeBytes <= 0 || r.SizeBytes > 10<<20 {
		return fmt.Errorf("size_bytes must be between 1 and 10485760")
	}
	return nil
}
