package testutils

import (
	"context"
	"fmt"

	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

// MockDriver is an in-memory store driver for tests. Routines is the
// backing data for the get methods; Results is returned verbatim from
// Query (truncated to topN). CallCount tracks every driver invocation so
// tests can assert validation happens before any store access.
type MockDriver struct {
	Routines  []routine.Routine
	Results   []store.QueryResult
	CallCount int

	// FailAll causes every method to return store.ErrUnavailable.
	FailAll bool
}

func NewMockDriver(routines ...routine.Routine) *MockDriver {
	return &MockDriver{
		Routines: routines,
	}
}

func (m *MockDriver) fail() error {
	if m.FailAll {
		return fmt.Errorf("mock driver failure: %w", store.ErrUnavailable)
	}
	return nil
}

func (m *MockDriver) Add(_ context.Context, routines []routine.Routine, _ [][]float32) error {
	m.CallCount++
	if err := m.fail(); err != nil {
		return err
	}
	m.Routines = append(m.Routines, routines...)
	return nil
}

func (m *MockDriver) GetAll(_ context.Context) ([]routine.Routine, error) {
	m.CallCount++
	if err := m.fail(); err != nil {
		return nil, err
	}
	return append([]routine.Routine(nil), m.Routines...), nil
}

func (m *MockDriver) GetByID(_ context.Context, id string) (*routine.Routine, error) {
	m.CallCount++
	if err := m.fail(); err != nil {
		return nil, err
	}
	for i := range m.Routines {
		if m.Routines[i].ID == id {
			r := m.Routines[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *MockDriver) GetByCategory(_ context.Context, category routine.Category, state routine.State) ([]routine.Routine, error) {
	m.CallCount++
	if err := m.fail(); err != nil {
		return nil, err
	}
	matched := make([]routine.Routine, 0)
	for _, r := range m.Routines {
		if r.Category != category {
			continue
		}
		if state != routine.StateAny && r.State != state {
			continue
		}
		matched = append(matched, r)
	}
	return matched, nil
}

func (m *MockDriver) GetByState(_ context.Context, state routine.State) ([]routine.Routine, error) {
	m.CallCount++
	if err := m.fail(); err != nil {
		return nil, err
	}
	matched := make([]routine.Routine, 0)
	for _, r := range m.Routines {
		if state == routine.StateAny || r.State == state {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (m *MockDriver) Query(_ context.Context, _ []float32, topN int) ([]store.QueryResult, error) {
	m.CallCount++
	if err := m.fail(); err != nil {
		return nil, err
	}
	if len(m.Results) < topN {
		return m.Results, nil
	}
	return m.Results[:topN], nil
}

func (m *MockDriver) UpdateMetadata(_ context.Context, id string, fields map[string]string) error {
	m.CallCount++
	if err := m.fail(); err != nil {
		return err
	}
	for i := range m.Routines {
		if m.Routines[i].ID != id {
			continue
		}
		if state, ok := fields[store.FieldState]; ok {
			m.Routines[i].State = routine.State(state)
		}
		if category, ok := fields[store.FieldCategory]; ok {
			m.Routines[i].Category = routine.Category(category)
		}
		if tags, ok := fields[store.FieldTags]; ok {
			m.Routines[i].Tags = routine.SplitTags(tags)
		}
		return nil
	}
	return fmt.Errorf("routine %s: %w", id, store.ErrNotFound)
}

func (m *MockDriver) Delete(_ context.Context, ids []string) error {
	m.CallCount++
	if err := m.fail(); err != nil {
		return err
	}
	keep := make([]routine.Routine, 0, len(m.Routines))
	for _, r := range m.Routines {
		deleted := false
		for _, id := range ids {
			if r.ID == id {
				deleted = true
				break
			}
		}
		if !deleted {
			keep = append(keep, r)
		}
	}
	m.Routines = keep
	return nil
}

func (m *MockDriver) Close() error {
	return nil
}

var _ store.Driver = (*MockDriver)(nil)
