package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"scanscore/internal/domain"
)

// MockOCRProvider is a mock implementation of port.OCRProvider.
type MockOCRProvider struct {
	mock.Mock
}

func (m *MockOCRProvider) RecognizeText(ctx context.Context, payload domain.ImagePayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// MockFieldExtractor is a mock implementation of port.FieldExtractor.
type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) ExtractFields(ctx context.Context, rawText string, documentType domain.DocumentType) (string, error) {
	args := m.Called(ctx, rawText, documentType)
	return args.String(0), args.Error(1)
}
