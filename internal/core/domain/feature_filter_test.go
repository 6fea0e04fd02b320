package domain

import (
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func featureFixture(name string, status FeatureStatus, mentions int) Feature {
	return Feature{
		ID:           "f-" + name,
		Name:         name,
		Description:  name + " description",
		Status:       status,
		Urgency:      UrgencyMedium,
		MentionCount: mentions,
	}
}

func TestFilterCompletedSortedByMentionsDesc(t *testing.T) {
	features := []Feature{
		featureFixture("one", FeatureStatusNew, 5),
		featureFixture("two", FeatureStatusCompleted, 20),
		featureFixture("three", FeatureStatusCompleted, 3),
		featureFixture("four", FeatureStatusInProgress, 1),
	}

	got := FilterAndSortFeatures(features, FeatureCriteria{
		Status:    string(FeatureStatusCompleted),
		Urgency:   FilterAll,
		SortBy:    SortByMentionCount,
		SortOrder: SortDesc,
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 completed features, got %d", len(got))
	}
	if got[0].MentionCount != 20 || got[1].MentionCount != 3 {
		t.Fatalf("expected mention order [20 3], got [%d %d]", got[0].MentionCount, got[1].MentionCount)
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	features := []Feature{
		featureFixture("zeta", FeatureStatusNew, 1),
		featureFixture("alpha", FeatureStatusNew, 9),
	}

	_ = FilterAndSortFeatures(features, FeatureCriteria{SortBy: SortByName, SortOrder: SortAsc})
	if features[0].Name != "zeta" || features[1].Name != "alpha" {
		t.Fatalf("input slice was reordered: [%s %s]", features[0].Name, features[1].Name)
	}

	first := FilterAndSortFeatures(features, FeatureCriteria{SortBy: SortByName, SortOrder: SortAsc})
	second := FilterAndSortFeatures(features, FeatureCriteria{SortBy: SortByName, SortOrder: SortAsc})
	if len(first) != len(second) {
		t.Fatalf("repeated calls disagree on length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("repeated calls disagree at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestSearchMatchesTypedDataPointFieldsOnly(t *testing.T) {
	withCustomer := featureFixture("export", FeatureStatusNew, 2)
	withCustomer.DataPoints = []DataPoint{{
		CustomerName: "Acme Corp",
		AIInsights:   &AIInsights{Summary: "wants CSV export", Keywords: []string{"csv"}},
	}}

	withExtraOnly := featureFixture("import", FeatureStatusNew, 1)
	withExtraOnly.DataPoints = []DataPoint{{
		Extra: map[string]any{"note": "acme mentioned here too"},
	}}

	features := []Feature{withCustomer, withExtraOnly}

	got := FilterAndSortFeatures(features, FeatureCriteria{SearchQuery: "ACME"})
	if len(got) != 1 || got[0].ID != withCustomer.ID {
		t.Fatalf("expected only the typed-field match, got %d results", len(got))
	}

	got = FilterAndSortFeatures(features, FeatureCriteria{SearchQuery: "csv"})
	if len(got) != 1 || got[0].ID != withCustomer.ID {
		t.Fatalf("expected AI-insight keyword match, got %d results", len(got))
	}
}

func TestMRRRangeMatchesAnyDataPoint(t *testing.T) {
	small := featureFixture("small", FeatureStatusNew, 1)
	small.DataPoints = []DataPoint{{BusinessMetrics: &BusinessMetrics{MRR: floatPtr(99)}}}

	big := featureFixture("big", FeatureStatusNew, 1)
	big.DataPoints = []DataPoint{
		{BusinessMetrics: &BusinessMetrics{MRR: floatPtr(50)}},
		{BusinessMetrics: &BusinessMetrics{MRR: floatPtr(5000)}},
	}

	noMRR := featureFixture("none", FeatureStatusNew, 1)

	got := FilterAndSortFeatures([]Feature{small, big, noMRR}, FeatureCriteria{MRRMin: floatPtr(1000)})
	if len(got) != 1 || got[0].ID != big.ID {
		t.Fatalf("expected only feature with a data point >= 1000 MRR, got %d results", len(got))
	}

	got = FilterAndSortFeatures([]Feature{small, big, noMRR}, FeatureCriteria{MRRMax: floatPtr(100)})
	if len(got) != 2 {
		t.Fatalf("expected both features with a data point <= 100 MRR, got %d", len(got))
	}
}

func TestUrgencySortRanksCriticalFirstAscending(t *testing.T) {
	mk := func(name string, u Urgency) Feature {
		f := featureFixture(name, FeatureStatusNew, 1)
		f.Urgency = u
		return f
	}
	features := []Feature{
		mk("low", UrgencyLow),
		mk("critical", UrgencyCritical),
		mk("medium", UrgencyMedium),
		mk("high", UrgencyHigh),
		mk("unknown", Urgency("bogus")),
	}

	got := FilterAndSortFeatures(features, FeatureCriteria{SortBy: SortByUrgency, SortOrder: SortAsc})
	order := []string{"critical", "high", "medium", "low", "unknown"}
	for i, want := range order {
		if got[i].Name != want {
			t.Fatalf("urgency order at %d: got %q, want %q", i, got[i].Name, want)
		}
	}

	got = FilterAndSortFeatures(features, FeatureCriteria{SortBy: SortByUrgency, SortOrder: SortDesc})
	if got[0].Name != "unknown" || got[len(got)-1].Name != "critical" {
		t.Fatalf("desc must invert the comparator: first %q last %q", got[0].Name, got[len(got)-1].Name)
	}
}

func TestLastMentionedSortMissingRanksLast(t *testing.T) {
	now := time.Now().UTC()
	older := now.Add(-48 * time.Hour)

	recent := featureFixture("recent", FeatureStatusNew, 1)
	recent.LastMentioned = &now
	stale := featureFixture("stale", FeatureStatusNew, 1)
	stale.LastMentioned = &older
	never := featureFixture("never", FeatureStatusNew, 1)

	got := FilterAndSortFeatures([]Feature{never, recent, stale}, FeatureCriteria{
		SortBy:    SortByLastMentioned,
		SortOrder: SortAsc,
	})
	if got[0].Name != "stale" || got[1].Name != "recent" || got[2].Name != "never" {
		t.Fatalf("expected [stale recent never], got [%s %s %s]", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestCombinedFiltersUseANDSemantics(t *testing.T) {
	match := featureFixture("dark mode", FeatureStatusNew, 4)
	match.Urgency = UrgencyHigh
	match.DataPoints = []DataPoint{{BusinessMetrics: &BusinessMetrics{MRR: floatPtr(500)}}}

	wrongUrgency := featureFixture("dark theme", FeatureStatusNew, 2)
	wrongUrgency.Urgency = UrgencyLow
	wrongUrgency.DataPoints = []DataPoint{{BusinessMetrics: &BusinessMetrics{MRR: floatPtr(500)}}}

	got := FilterAndSortFeatures([]Feature{match, wrongUrgency}, FeatureCriteria{
		SearchQuery: "dark",
		Status:      string(FeatureStatusNew),
		Urgency:     string(UrgencyHigh),
		MRRMin:      floatPtr(100),
	})
	if len(got) != 1 || got[0].ID != match.ID {
		t.Fatalf("AND semantics violated: got %d results", len(got))
	}
}
