package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type SignalType string

const (
	SignalKeyword      SignalType = "keyword"
	SignalPattern      SignalType = "pattern"
	SignalSemantic     SignalType = "semantic"
	SignalBusinessRule SignalType = "business_rule"
)

// ClassificationSignal is a classification rule derived from an approved or
// modified cluster. Exactly one payload field is populated, selected by Type.
// Precision/recall and usage counters are maintained by the downstream
// evaluation process, never by this service.
type ClassificationSignal struct {
	ID                string            `json:"id"`
	SourceClusterID   string            `json:"source_cluster_id"`
	Type              SignalType        `json:"signal_type"`
	Name              string            `json:"signal_name"`
	Keywords          []string          `json:"keywords,omitempty"`
	Patterns          []string          `json:"patterns,omitempty"`
	SemanticThreshold *float64          `json:"semantic_threshold,omitempty"`
	BusinessRule      map[string]string `json:"business_rule,omitempty"`
	TargetCategory    string            `json:"target_category"`
	TargetTheme       string            `json:"target_theme"`
	PriorityWeight    float64           `json:"priority_weight"`
	Precision         *float64          `json:"precision,omitempty"`
	Recall            *float64          `json:"recall,omitempty"`
	UsageCount        int               `json:"usage_count"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Validate checks that the payload matches the declared signal type and that
// no other payload slot is populated.
func (s ClassificationSignal) Validate() error {
	if s.ID == "" {
		return WrapError(ErrValidationFailed, "validate signal", missingFieldError("id"))
	}
	if s.SourceClusterID == "" {
		return WrapError(ErrValidationFailed, "validate signal", missingFieldError("source_cluster_id"))
	}
	if s.Name == "" {
		return WrapError(ErrValidationFailed, "validate signal", missingFieldError("signal_name"))
	}

	populated := 0
	if len(s.Keywords) > 0 {
		populated++
	}
	if len(s.Patterns) > 0 {
		populated++
	}
	if s.SemanticThreshold != nil {
		populated++
	}
	if len(s.BusinessRule) > 0 {
		populated++
	}
	if populated != 1 {
		return WrapError(ErrValidationFailed, "validate signal",
			fmt.Errorf("expected exactly one payload, got %d", populated))
	}

	ok := false
	switch s.Type {
	case SignalKeyword:
		ok = len(s.Keywords) > 0
	case SignalPattern:
		ok = len(s.Patterns) > 0
	case SignalSemantic:
		ok = s.SemanticThreshold != nil
	case SignalBusinessRule:
		ok = len(s.BusinessRule) > 0
	default:
		return WrapError(ErrValidationFailed, "validate signal",
			fmt.Errorf("unknown signal type %q", s.Type))
	}
	if !ok {
		return WrapError(ErrValidationFailed, "validate signal",
			fmt.Errorf("payload does not match signal type %q", s.Type))
	}
	for _, pattern := range s.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return WrapError(ErrValidationFailed, "validate signal",
				fmt.Errorf("pattern %q: %w", pattern, err))
		}
	}
	if s.SemanticThreshold != nil && (*s.SemanticThreshold < 0 || *s.SemanticThreshold > 1) {
		return WrapError(ErrValidationFailed, "validate signal",
			fmt.Errorf("semantic threshold %f outside [0,1]", *s.SemanticThreshold))
	}
	return nil
}

// SignalFilter is an AND-combination of optional predicates for registry reads.
type SignalFilter struct {
	Type           *SignalType
	IsActive       *bool
	TargetCategory string
}

func (f SignalFilter) Matches(s ClassificationSignal) bool {
	if f.Type != nil && s.Type != *f.Type {
		return false
	}
	if f.IsActive != nil && s.IsActive != *f.IsActive {
		return false
	}
	if f.TargetCategory != "" && s.TargetCategory != f.TargetCategory {
		return false
	}
	return true
}

func missingFieldError(field string) error {
	return errors.New("missing required field: " + field)
}
