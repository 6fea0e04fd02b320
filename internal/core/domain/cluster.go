package domain

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalModified ApprovalStatus = "modified"
)

// Terminal reports whether a status admits no further transitions.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected || s == ApprovalModified
}

// DiscoveredCluster is one AI-proposed grouping of messages awaiting human
// review. Reviewer fields are only set once the cluster reaches a terminal
// status.
type DiscoveredCluster struct {
	ID              string         `json:"id"`
	RunID           string         `json:"run_id"`
	Name            string         `json:"cluster_name"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	Theme           string         `json:"theme"`
	ConfidenceScore float64        `json:"confidence_score"`
	MessageCount    int            `json:"message_count"`
	BusinessImpact  string         `json:"business_impact,omitempty"`
	ExampleMessages []string       `json:"example_messages,omitempty"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	ReviewedBy      string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	ReviewFeedback  string         `json:"review_feedback,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ClusterOverrides carries the operator's corrections applied by a modify
// decision. All fields are mandatory; the human correction replaces the
// AI-proposed display fields wholesale.
type ClusterOverrides struct {
	Name        string `json:"cluster_name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Theme       string `json:"theme"`
}

func (o ClusterOverrides) Validate() error {
	missing := ""
	switch {
	case o.Name == "":
		missing = "cluster_name"
	case o.Description == "":
		missing = "description"
	case o.Category == "":
		missing = "category"
	case o.Theme == "":
		missing = "theme"
	}
	if missing != "" {
		return WrapError(ErrValidationFailed, "validate overrides", missingFieldError(missing))
	}
	return nil
}
