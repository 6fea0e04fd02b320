package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func TestApproveClusterReturnsDecidedCluster(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})

	body := strings.NewReader(`{"reviewed_by":"pm@example.com","feedback":"looks right"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clusters/c-1/approve", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var cluster domain.DiscoveredCluster
	if err := json.NewDecoder(res.Body).Decode(&cluster); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cluster.ApprovalStatus != domain.ApprovalApproved || cluster.ReviewedBy != "pm@example.com" {
		t.Fatalf("unexpected cluster: %+v", cluster)
	}
	if len(fakes.reviewer.decisions) != 1 || fakes.reviewer.decisions[0] != "approved" {
		t.Fatalf("decision not recorded: %v", fakes.reviewer.decisions)
	}
}

func TestDecisionWithoutReviewerIsRejected(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/v1/clusters/c-1/reject", strings.NewReader(`{"feedback":"n/a"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if len(fakes.reviewer.decisions) != 0 {
		t.Fatalf("decision must not reach the reviewer: %v", fakes.reviewer.decisions)
	}
}

func TestTerminalClusterDecisionMapsToConflict(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})
	fakes.reviewer.decideErr = domain.WrapError(domain.ErrInvalidTransition, "review cluster", errors.New("already approved"))

	body := strings.NewReader(`{"reviewed_by":"pm@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clusters/c-1/approve", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestModifyEchoesSubmittedPayloadOnValidationFailure(t *testing.T) {
	handler, _ := newTestRouter(RouterOptions{})

	// Missing theme in the overrides.
	body := strings.NewReader(`{"reviewed_by":"pm@example.com","overrides":{"cluster_name":"n","description":"d","category":"bug"}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clusters/c-1/modify", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		Error     string        `json:"error"`
		Submitted reviewRequest `json:"submitted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Submitted.Overrides == nil || resp.Submitted.Overrides.Category != "bug" {
		t.Fatalf("submitted payload not echoed: %+v", resp.Submitted)
	}
}

func TestStartRunAcceptedWith202(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})

	body := strings.NewReader(`{"run_name":"weekly","confidence_threshold":0.7}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/runs", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if len(fakes.runs.started) != 1 || fakes.runs.started[0].RunName != "weekly" {
		t.Fatalf("run not started: %+v", fakes.runs.started)
	}
}

func TestToggleSignalReturnsUpdatedState(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})
	fakes.signals.signals = []domain.ClassificationSignal{{ID: "s-1", IsActive: true}}

	req := httptest.NewRequest(http.MethodPost, "/v1/signals/s-1/toggle", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var signal domain.ClassificationSignal
	if err := json.NewDecoder(res.Body).Decode(&signal); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if signal.IsActive {
		t.Fatalf("expected toggled-off signal")
	}
}

func TestUnknownSignalToggleIs404(t *testing.T) {
	handler, _ := newTestRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/v1/signals/missing/toggle", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestRequestIDIsEchoedBack(t *testing.T) {
	handler, _ := newTestRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res2.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestExportFeaturesStreamsWorkbook(t *testing.T) {
	handler, _ := newTestRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/features.xlsx", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", got)
	}
	if res.Body.String() != "xlsx" {
		t.Fatalf("workbook bytes not streamed")
	}
}

func TestListFeaturesParsesCriteria(t *testing.T) {
	handler, fakes := newTestRouter(RouterOptions{})

	url := fmt.Sprintf("/v1/features?status=%s&urgency=%s&mrr_min=100&sort_by=mrr&sort_order=desc", domain.FeatureStatusNew, domain.UrgencyHigh)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	got := fakes.features.criteria
	if got.Status != "new" || got.Urgency != "high" || got.MRRMin == nil || *got.MRRMin != 100 {
		t.Fatalf("criteria not parsed: %+v", got)
	}
	if got.SortBy != domain.SortByMRR || got.SortOrder != domain.SortDesc {
		t.Fatalf("sort not parsed: %+v", got)
	}
}
