package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

// mockProfileRepo is a function-field mock for ProfileRepository.
type mockProfileRepo struct {
	CreateFunc     func(ctx context.Context, profile *models.ConnectionProfile) error
	GetByIDFunc    func(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error)
	ListFunc       func(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error)
	UpdateFunc     func(ctx context.Context, profile *models.ConnectionProfile) error
	DeactivateFunc func(ctx context.Context, userID, id uuid.UUID) error

	CreateCalls     int
	GetByIDCalls    int
	DeactivateCalls int
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.ConnectionProfile) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error) {
	m.GetByIDCalls++
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return &models.ConnectionProfile{ID: id, UserID: userID}, nil
}

func (m *mockProfileRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionProfile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.ConnectionProfile) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	m.DeactivateCalls++
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, userID, id)
	}
	return nil
}

// mockUserRepo is a function-field mock for UserRepository.
type mockUserRepo struct {
	CreateFunc         func(ctx context.Context, user *models.User) error
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id uuid.UUID, passwordHash string) error

	UpdatePasswordCalls int
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.UpdatePasswordCalls++
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// mockHistoryRepo is a function-field mock for HistoryRepository.
type mockHistoryRepo struct {
	CreateFunc     func(ctx context.Context, record *models.QueryHistoryRecord) error
	ListByUserFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, record *models.QueryHistoryRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *mockHistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

// stubConnector is a function-field SourceConnector for gateway tests.
type stubConnector struct {
	ConnectFunc        func(ctx context.Context) error
	ExecuteQueryFunc   func(ctx context.Context, query string) (*connector.QueryResult, error)
	DescribeSchemaFunc func(ctx context.Context) (schema.Schema, error)
	DumpAllDataFunc    func(ctx context.Context, limit int) (map[string][]connector.Row, error)

	ConnectCalls    int
	ExecuteCalls    int
	ExecutedQueries []string
	DisconnectCalls int
}

func (s *stubConnector) Connect(ctx context.Context) error {
	s.ConnectCalls++
	if s.ConnectFunc != nil {
		return s.ConnectFunc(ctx)
	}
	return nil
}

func (s *stubConnector) ExecuteQuery(ctx context.Context, query string) (*connector.QueryResult, error) {
	s.ExecuteCalls++
	s.ExecutedQueries = append(s.ExecutedQueries, query)
	if s.ExecuteQueryFunc != nil {
		return s.ExecuteQueryFunc(ctx, query)
	}
	return &connector.QueryResult{}, nil
}

func (s *stubConnector) DescribeSchema(ctx context.Context) (schema.Schema, error) {
	if s.DescribeSchemaFunc != nil {
		return s.DescribeSchemaFunc(ctx)
	}
	return schema.Schema{}, nil
}

func (s *stubConnector) DumpAllData(ctx context.Context, limit int) (map[string][]connector.Row, error) {
	if s.DumpAllDataFunc != nil {
		return s.DumpAllDataFunc(ctx, limit)
	}
	return map[string][]connector.Row{}, nil
}

func (s *stubConnector) Disconnect() {
	s.DisconnectCalls++
}

// stubFactory hands out a fixed connector.
type stubFactory struct {
	Conn     *stubConnector
	NewErr   error
	NewCalls int
}

func (f *stubFactory) New(profile *models.ConnectionProfile) (connector.SourceConnector, error) {
	f.NewCalls++
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	return f.Conn, nil
}

var (
	_ connector.SourceConnector      = (*stubConnector)(nil)
	_ connector.Factory              = (*stubFactory)(nil)
	_ repositories.ProfileRepository = (*mockProfileRepo)(nil)
	_ repositories.UserRepository    = (*mockUserRepo)(nil)
	_ repositories.HistoryRepository = (*mockHistoryRepo)(nil)
)
