package insight

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/resilience"
)

// Client talks to the external insight service, the AI backend that analyzes
// the message corpus and proposes clusters and classification signals.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithExecutor(baseURL, nil)
}

func NewWithExecutor(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Deriver implements ports.SignalDeriver.
type Deriver struct {
	client *Client
}

func NewDeriver(client *Client) *Deriver {
	return &Deriver{client: client}
}

func (d *Deriver) DeriveSignals(ctx context.Context, cluster domain.DiscoveredCluster) ([]domain.ClassificationSignal, error) {
	request := map[string]any{
		"cluster_name":     cluster.Name,
		"description":      cluster.Description,
		"category":         cluster.Category,
		"theme":            cluster.Theme,
		"example_messages": cluster.ExampleMessages,
	}

	var response struct {
		Signals []domain.ClassificationSignal `json:"signals"`
	}
	if err := d.client.call(ctx, "/v1/derive-signals", request, &response, "derive_signals"); err != nil {
		return nil, err
	}
	return response.Signals, nil
}

// Clusterer implements ports.MessageClusterer.
type Clusterer struct {
	client *Client
}

func NewClusterer(client *Client) *Clusterer {
	return &Clusterer{client: client}
}

func (c *Clusterer) DiscoverClusters(ctx context.Context, run domain.ClusteringRun) ([]domain.DiscoveredCluster, int, error) {
	request := map[string]any{
		"workspace_id":         run.WorkspaceID,
		"confidence_threshold": run.ConfidenceThreshold,
		"max_messages":         run.MaxMessages,
	}

	var response struct {
		Clusters         []domain.DiscoveredCluster `json:"clusters"`
		MessagesAnalyzed int                        `json:"messages_analyzed"`
	}
	if err := c.client.call(ctx, "/v1/discover-clusters", request, &response, "discover_clusters"); err != nil {
		return nil, 0, err
	}
	return response.Clusters, response.MessagesAnalyzed, nil
}

func (c *Client) call(ctx context.Context, path string, payload, out any, operation string) error {
	invoke := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "insight."+operation, invoke, classifyInsightError)
	} else {
		err = invoke(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
