package domain

import (
	"math"
	"sort"
	"strings"
)

type SortField string

const (
	SortByName          SortField = "name"
	SortByMentionCount  SortField = "mention_count"
	SortByLastMentioned SortField = "last_mentioned"
	SortByStatus        SortField = "status"
	SortByUrgency       SortField = "urgency"
	SortByMRR           SortField = "mrr"
	SortByCompanyName   SortField = "company_name"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAll disables an exact-match predicate.
const FilterAll = "all"

// FeatureCriteria is the composable predicate/comparator set applied by
// FilterAndSortFeatures. Non-default predicates combine with AND semantics;
// the free-text search is itself a disjunction across the indexed fields.
type FeatureCriteria struct {
	SearchQuery string
	Status      string
	Urgency     string
	MRRMin      *float64
	MRRMax      *float64
	SortBy      SortField
	SortOrder   SortOrder
}

var statusRank = map[FeatureStatus]int{
	FeatureStatusNew:        0,
	FeatureStatusInProgress: 1,
	FeatureStatusCompleted:  2,
}

var urgencyRank = map[Urgency]int{
	UrgencyCritical: 0,
	UrgencyHigh:     1,
	UrgencyMedium:   2,
	UrgencyLow:      3,
}

// FilterAndSortFeatures returns a new, filtered and ordered slice. The input
// slice is never reordered or mutated, so a currently displayed selection
// cannot be reshuffled mid-edit.
func FilterAndSortFeatures(features []Feature, criteria FeatureCriteria) []Feature {
	out := make([]Feature, 0, len(features))
	query := strings.ToLower(strings.TrimSpace(criteria.SearchQuery))
	for _, f := range features {
		if !matchesCriteria(f, criteria, query) {
			continue
		}
		out = append(out, f)
	}

	cmp := comparatorFor(criteria.SortBy)
	if cmp != nil {
		desc := criteria.SortOrder == SortDesc
		sort.SliceStable(out, func(i, j int) bool {
			c := cmp(out[i], out[j])
			if desc {
				c = -c
			}
			return c < 0
		})
	}
	return out
}

func matchesCriteria(f Feature, criteria FeatureCriteria, query string) bool {
	if criteria.Status != "" && criteria.Status != FilterAll && string(f.Status) != criteria.Status {
		return false
	}
	if criteria.Urgency != "" && criteria.Urgency != FilterAll && string(f.Urgency) != criteria.Urgency {
		return false
	}
	if !matchesMRRRange(f, criteria.MRRMin, criteria.MRRMax) {
		return false
	}
	if query != "" && !matchesSearch(f, query) {
		return false
	}
	return true
}

// matchesMRRRange passes when any data point carries an MRR inside the
// requested range. Open ends default to -inf / +inf. Features without any MRR
// data point fail a bounded range.
func matchesMRRRange(f Feature, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	lo := math.Inf(-1)
	hi := math.Inf(1)
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	for _, dp := range f.DataPoints {
		if dp.BusinessMetrics == nil || dp.BusinessMetrics.MRR == nil {
			continue
		}
		if mrr := *dp.BusinessMetrics.MRR; mrr >= lo && mrr <= hi {
			return true
		}
	}
	return false
}

// matchesSearch scans the typed fields only; the opaque Extra bag is excluded
// by design so evolving extraction payloads cannot degrade search precision.
func matchesSearch(f Feature, query string) bool {
	if containsFold(f.Name, query) || containsFold(f.Description, query) {
		return true
	}
	for _, dp := range f.DataPoints {
		if containsFold(dp.CustomerName, query) ||
			containsFold(dp.CustomerEmail, query) ||
			containsFold(dp.SenderName, query) {
			return true
		}
		if dp.BusinessMetrics != nil {
			if containsFold(dp.BusinessMetrics.CompanyName, query) ||
				containsFold(dp.BusinessMetrics.Plan, query) {
				return true
			}
		}
		for _, v := range dp.Entities {
			if containsFold(v, query) {
				return true
			}
		}
		if dp.AIInsights != nil {
			if containsFold(dp.AIInsights.Summary, query) ||
				containsFold(dp.AIInsights.Sentiment, query) {
				return true
			}
			for _, kw := range dp.AIInsights.Keywords {
				if containsFold(kw, query) {
					return true
				}
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	if haystack == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}

func comparatorFor(field SortField) func(a, b Feature) int {
	switch field {
	case SortByName:
		return func(a, b Feature) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByMentionCount:
		return func(a, b Feature) int { return compareInt(a.MentionCount, b.MentionCount) }
	case SortByLastMentioned:
		return func(a, b Feature) int {
			// Missing timestamps rank last in ascending order.
			switch {
			case a.LastMentioned == nil && b.LastMentioned == nil:
				return 0
			case a.LastMentioned == nil:
				return 1
			case b.LastMentioned == nil:
				return -1
			}
			return a.LastMentioned.Compare(*b.LastMentioned)
		}
	case SortByStatus:
		return func(a, b Feature) int {
			return compareInt(rankOrLast(statusRank, a.Status), rankOrLast(statusRank, b.Status))
		}
	case SortByUrgency:
		return func(a, b Feature) int {
			return compareInt(rankOrLast(urgencyRank, a.Urgency), rankOrLast(urgencyRank, b.Urgency))
		}
	case SortByMRR:
		return func(a, b Feature) int { return compareFloat(maxMRR(a), maxMRR(b)) }
	case SortByCompanyName:
		return func(a, b Feature) int {
			ca, cb := firstCompany(a), firstCompany(b)
			// Features with no company data rank last in ascending order.
			switch {
			case ca == "" && cb == "":
				return 0
			case ca == "":
				return 1
			case cb == "":
				return -1
			}
			return strings.Compare(strings.ToLower(ca), strings.ToLower(cb))
		}
	}
	return nil
}

func rankOrLast[K comparable](table map[K]int, key K) int {
	if rank, ok := table[key]; ok {
		return rank
	}
	return math.MaxInt
}

// maxMRR projects a feature onto a single MRR scalar for sorting: the largest
// MRR across its data points. Features without MRR data sort last ascending.
func maxMRR(f Feature) float64 {
	best := math.Inf(1)
	found := false
	for _, dp := range f.DataPoints {
		if dp.BusinessMetrics == nil || dp.BusinessMetrics.MRR == nil {
			continue
		}
		if !found || *dp.BusinessMetrics.MRR > best {
			best = *dp.BusinessMetrics.MRR
			found = true
		}
	}
	return best
}

func firstCompany(f Feature) string {
	for _, dp := range f.DataPoints {
		if dp.BusinessMetrics != nil && dp.BusinessMetrics.CompanyName != "" {
			return dp.BusinessMetrics.CompanyName
		}
	}
	return ""
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
