package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDictionary is a mock implementation of port.Dictionary.
type MockDictionary struct {
	mock.Mock
}

func (m *MockDictionary) IsKnownWord(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

// MockLanguageModel is a mock implementation of port.LanguageModel.
type MockLanguageModel struct {
	mock.Mock
}

func (m *MockLanguageModel) SequenceNLL(ctx context.Context, text string) (float64, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(float64), args.Error(1)
}
