// Package routine defines the practice routine domain model: the record
// shape, its category and completion-state enumerations, and the validation
// rules applied before anything reaches the store.
package routine

import (
	"fmt"
	"strings"
)

// Category classifies how often a routine is meant to come around.
type Category string

const (
	CategoryDaily        Category = "daily"
	CategoryOneDay       Category = "one_day"
	CategoryTwoThreeDays Category = "two_three_days"
)

// Categories returns every recognized category.
func Categories() []Category {
	return []Category{CategoryDaily, CategoryOneDay, CategoryTwoThreeDays}
}

// ParseCategory validates s against the category enumeration.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if Category(s) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// State is the completion state of a routine.
type State string

const (
	StateNotCompleted State = "not_completed"
	StateCompleted    State = "completed"

	// StateAny disables state filtering on gateway queries. It is never
	// stored on a record.
	StateAny State = ""
)

// ParseState validates s against the storable state enumeration.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateNotCompleted, StateCompleted:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// ParseStateFilter is ParseState extended with the query-only widening
// values: an empty string or "all" selects every state.
func ParseStateFilter(s string) (State, error) {
	if s == "" || s == "all" {
		return StateAny, nil
	}
	return ParseState(s)
}

// Routine is a single practice item. ID is assigned once at seed time and
// never changes; State is the only field that mutates afterwards.
type Routine struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	State    State    `json:"state"`
}

// Validate checks the record against the domain invariants. Records that
// fail validation are rejected before any store call is made.
func (r Routine) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("routine text cannot be empty")
	}
	if _, err := ParseCategory(string(r.Category)); err != nil {
		return err
	}
	if _, err := ParseState(string(r.State)); err != nil {
		return err
	}
	return nil
}

// SearchResult is a routine produced by semantic search, carrying the
// store's similarity score. Score uses the store's native distance
// convention: lower = more similar.
type SearchResult struct {
	Routine
	Score float32 `json:"score"`
}

// tagSeparator is the delimiter used for the stored form of the tag set.
const tagSeparator = ", "

// JoinTags flattens a tag set into the delimited string stored as metadata.
func JoinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}

// SplitTags reconstructs a tag set from its stored delimited form.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
