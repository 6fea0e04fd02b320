package domain

import "time"

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

type FeatureStatus string

const (
	FeatureStatusNew        FeatureStatus = "new"
	FeatureStatusInProgress FeatureStatus = "in_progress"
	FeatureStatusCompleted  FeatureStatus = "completed"
)

// BusinessMetrics carries the revenue context extracted from a source message.
type BusinessMetrics struct {
	CompanyName string   `json:"company_name,omitempty"`
	Plan        string   `json:"plan,omitempty"`
	MRR         *float64 `json:"mrr,omitempty"`
	SeatCount   int      `json:"seat_count,omitempty"`
}

// AIInsights is the model-produced summary attached to a data point.
type AIInsights struct {
	Summary   string   `json:"summary,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// DataPoint is one source mention backing a feature. Only the typed fields
// below participate in search and MRR filtering; Extra is an opaque bag for
// whatever else the extraction pipeline emits and is never indexed.
type DataPoint struct {
	SourceType      string            `json:"source_type,omitempty"`
	CustomerName    string            `json:"customer_name,omitempty"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	SenderName      string            `json:"sender_name,omitempty"`
	BusinessMetrics *BusinessMetrics  `json:"business_metrics,omitempty"`
	Entities        map[string]string `json:"entities,omitempty"`
	AIInsights      *AIInsights       `json:"ai_insights,omitempty"`
	Extra           map[string]any    `json:"extra,omitempty"`
}

// Feature is a normalized, deduplicated customer ask, linked to zero or one
// theme.
type Feature struct {
	ID             string        `json:"id"`
	WorkspaceID    string        `json:"workspace_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Urgency        Urgency       `json:"urgency"`
	Status         FeatureStatus `json:"status"`
	MentionCount   int           `json:"mention_count"`
	ThemeID        *string       `json:"theme_id,omitempty"`
	FirstMentioned *time.Time    `json:"first_mentioned,omitempty"`
	LastMentioned  *time.Time    `json:"last_mentioned,omitempty"`
	DataPoints     []DataPoint   `json:"data_points"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

func ValidFeatureStatus(s FeatureStatus) bool {
	switch s {
	case FeatureStatusNew, FeatureStatusInProgress, FeatureStatusCompleted:
		return true
	}
	return false
}
