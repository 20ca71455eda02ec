package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/schema"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

// Compile-time interface checks for the mocks.
var (
	_ services.AccountService = (*mockAccountService)(nil)
	_ services.ProfileService = (*mockProfileService)(nil)
	_ services.QueryGateway   = (*mockQueryGateway)(nil)
	_ services.HistoryService = (*mockHistoryService)(nil)
)

type mockAccountService struct {
	RegisterFunc             func(ctx context.Context, email, password string) (*models.User, string, error)
	LoginFunc                func(ctx context.Context, email, password string) (*models.User, string, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) string
	ResetPasswordFunc        func(ctx context.Context, token, newPassword string) error

	RegisterCalls int
	LoginCalls    int
}

func (m *mockAccountService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	m.RegisterCalls++
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return &models.User{ID: uuid.New(), Email: email}, "token", nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	m.LoginCalls++
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &models.User{ID: uuid.New(), Email: email}, "token", nil
}

func (m *mockAccountService) RequestPasswordReset(ctx context.Context, email string) string {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return services.PasswordResetMessage
}

func (m *mockAccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

type mockProfileService struct {
	CreateFunc         func(ctx context.Context, profile *models.ConnectionProfile) (*models.ConnectionProfile, error)
	GetFunc            func(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error)
	ListFunc           func(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error)
	DeleteFunc         func(ctx context.Context, userID, id uuid.UUID) error
	DescribeSchemaFunc func(ctx context.Context, userID, id uuid.UUID) (schema.Schema, error)
	TestConnectionFunc func(ctx context.Context, profile *models.ConnectionProfile) (schema.Schema, error)

	CreateCalls         int
	DeleteCalls         int
	TestConnectionCalls int
}

func (m *mockProfileService) Create(ctx context.Context, profile *models.ConnectionProfile) (*models.ConnectionProfile, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	return profile, nil
}

func (m *mockProfileService) Get(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return &models.ConnectionProfile{ID: id, UserID: userID}, nil
}

func (m *mockProfileService) List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *mockProfileService) DescribeSchema(ctx context.Context, userID, id uuid.UUID) (schema.Schema, error) {
	if m.DescribeSchemaFunc != nil {
		return m.DescribeSchemaFunc(ctx, userID, id)
	}
	return schema.Schema{}, nil
}

func (m *mockProfileService) TestConnection(ctx context.Context, profile *models.ConnectionProfile) (schema.Schema, error) {
	m.TestConnectionCalls++
	if m.TestConnectionFunc != nil {
		return m.TestConnectionFunc(ctx, profile)
	}
	return schema.Schema{}, nil
}

type mockQueryGateway struct {
	ExecuteFunc  func(ctx context.Context, userID, profileID uuid.UUID, question string) (*models.QueryEnvelope, error)
	ExecuteCalls int
}

func (m *mockQueryGateway) Execute(ctx context.Context, userID, profileID uuid.UUID, question string) (*models.QueryEnvelope, error) {
	m.ExecuteCalls++
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, userID, profileID, question)
	}
	return &models.QueryEnvelope{Success: true, Data: []map[string]any{}}, nil
}

type mockHistoryService struct {
	RecordFunc func(ctx context.Context, userID, profileID uuid.UUID, question, queryText string, data []map[string]any) error
	ListFunc   func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error)
}

func (m *mockHistoryService) Record(ctx context.Context, userID, profileID uuid.UUID, question, queryText string, data []map[string]any) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, userID, profileID, question, queryText, data)
	}
	return nil
}

func (m *mockHistoryService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit)
	}
	return nil, nil
}
