package domain

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunParams are the operator-supplied parameters for starting a clustering
// run. ConfidenceThreshold is a float in [0,1]; callers presenting
// percentages convert at the boundary.
type RunParams struct {
	RunName             string  `json:"run_name"`
	Description         string  `json:"description,omitempty"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	MaxMessages         int     `json:"max_messages,omitempty"`
}

// ClusteringRun is one batch analysis pass over a message corpus. A run owns
// zero or more DiscoveredClusters.
type ClusteringRun struct {
	ID                  string     `json:"id"`
	WorkspaceID         string     `json:"workspace_id"`
	RunName             string     `json:"run_name"`
	Description         string     `json:"description,omitempty"`
	Status              RunStatus  `json:"status"`
	MessagesAnalyzed    int        `json:"messages_analyzed"`
	ClustersDiscovered  int        `json:"clusters_discovered"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
	MaxMessages         int        `json:"max_messages,omitempty"`
	Error               string     `json:"error,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}
