package llm

import "context"

// MockClient is a configurable test double. Set the function field to
// control behavior in tests.
type MockClient struct {
	// AnalyzeFunc is called when Analyze is invoked. If nil, an empty
	// Analysis and nil error are returned.
	AnalyzeFunc func(ctx context.Context, question, sourceContext string) (*Analysis, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	AnalyzeCalls int
}

// NewMockClient creates a mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{Model: "mock-model"}
}

// Analyze implements Client.
func (m *MockClient) Analyze(ctx context.Context, question, sourceContext string) (*Analysis, error) {
	m.AnalyzeCalls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, question, sourceContext)
	}
	return &Analysis{}, nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

var _ Client = (*MockClient)(nil)
