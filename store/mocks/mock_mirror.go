package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockMirror stands in for the cloud side of the store.
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) SelectAll(ctx context.Context, table string, out interface{}) error {
	args := m.Called(table)
	if payload, ok := args.Get(0).([]byte); ok && payload != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockMirror) SelectById(ctx context.Context, table, id string, out interface{}) error {
	args := m.Called(table, id)
	if payload, ok := args.Get(0).([]byte); ok && payload != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockMirror) Upsert(ctx context.Context, table string, records interface{}) error {
	payload, _ := json.Marshal(records)
	args := m.Called(table, string(payload))
	return args.Error(0)
}

func (m *MockMirror) Insert(ctx context.Context, table string, records interface{}) error {
	payload, _ := json.Marshal(records)
	args := m.Called(table, string(payload))
	return args.Error(0)
}

func (m *MockMirror) DeleteById(ctx context.Context, table, id string) error {
	args := m.Called(table, id)
	return args.Error(0)
}

func (m *MockMirror) Count(ctx context.Context, table string) (int, error) {
	args := m.Called(table)
	return args.Int(0), args.Error(1)
}

func (m *MockMirror) RealtimeUrl() string {
	args := m.Called()
	return args.String(0)
}
