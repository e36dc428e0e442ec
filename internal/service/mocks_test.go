package service_test

import (
	"context"
	"database/sql"
	"sync"

	"callpilot/internal/dialer"
	"callpilot/internal/models"
	"callpilot/internal/notify"
)

// mockCampaignRepo mocks repository.CampaignRepository
type mockCampaignRepo struct {
	CreateFunc           func(ctx context.Context, campaign *models.Campaign) error
	GetByIDFunc          func(ctx context.Context, id string) (*models.Campaign, error)
	GetWithStatsFunc     func(ctx context.Context, id string) (*models.CampaignWithStats, error)
	ListByStatusFunc     func(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error)
	UpdateStatusFromFunc func(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error)
	DeleteFunc           func(ctx context.Context, id string) error

	Calls map[string]int
	mu    sync.Mutex
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{Calls: make(map[string]int)}
}

func (m *mockCampaignRepo) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
}

func (m *mockCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	m.record("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, campaign)
	}
	return nil
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	m.record("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockCampaignRepo) GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error) {
	m.record("GetWithStats")
	if m.GetWithStatsFunc != nil {
		return m.GetWithStatsFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockCampaignRepo) ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	m.record("ListByStatus")
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	return nil, nil
}

func (m *mockCampaignRepo) UpdateStatusFrom(ctx context.Context, id string, from, to models.CampaignStatus) (int64, error) {
	m.record("UpdateStatusFrom")
	if m.UpdateStatusFromFunc != nil {
		return m.UpdateStatusFromFunc(ctx, id, from, to)
	}
	return 1, nil
}

func (m *mockCampaignRepo) Delete(ctx context.Context, id string) error {
	m.record("Delete")
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// mockTaskRepo mocks repository.TaskRepository
type mockTaskRepo struct {
	CreateBatchFunc      func(ctx context.Context, tasks []*models.CallTask) error
	GetByIDFunc          func(ctx context.Context, id string) (*models.CallTask, error)
	ListByCampaignFunc   func(ctx context.Context, campaignID string) ([]*models.CallTask, error)
	UpdateManyStatusFunc func(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error)
	MarkDispatchedFunc   func(ctx context.Context, taskID string) (bool, error)
	CountIncompleteFunc  func(ctx context.Context, campaignID string) (int, int, error)

	Calls map[string]int
	mu    sync.Mutex
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{Calls: make(map[string]int)}
}

func (m *mockTaskRepo) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
}

func (m *mockTaskRepo) CreateBatch(ctx context.Context, tasks []*models.CallTask) error {
	m.record("CreateBatch")
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tasks)
	}
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*models.CallTask, error) {
	m.record("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.CallTask, error) {
	m.record("ListByCampaign")
	if m.ListByCampaignFunc != nil {
		return m.ListByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

func (m *mockTaskRepo) UpdateManyStatus(ctx context.Context, campaignID string, from []models.CallStatus, to models.CallStatus) (int64, error) {
	m.record("UpdateManyStatus")
	if m.UpdateManyStatusFunc != nil {
		return m.UpdateManyStatusFunc(ctx, campaignID, from, to)
	}
	return 0, nil
}

func (m *mockTaskRepo) MarkDispatched(ctx context.Context, taskID string) (bool, error) {
	m.record("MarkDispatched")
	if m.MarkDispatchedFunc != nil {
		return m.MarkDispatchedFunc(ctx, taskID)
	}
	return true, nil
}

func (m *mockTaskRepo) CountIncomplete(ctx context.Context, campaignID string) (int, int, error) {
	m.record("CountIncomplete")
	if m.CountIncompleteFunc != nil {
		return m.CountIncompleteFunc(ctx, campaignID)
	}
	return 0, 0, nil
}

// mockContactRepo mocks repository.ContactRepository
type mockContactRepo struct {
	CreateFunc  func(ctx context.Context, contact *models.Contact) error
	GetByIDFunc func(ctx context.Context, id string) (*models.Contact, error)
}

func (m *mockContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contact)
	}
	return nil
}

func (m *mockContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

// mockDialer mocks dialer.Dialer and records call order
type mockDialer struct {
	PlaceCallFunc func(ctx context.Context, req dialer.CallRequest) (*dialer.CallAck, error)

	mu     sync.Mutex
	Placed []dialer.CallRequest
}

func (m *mockDialer) PlaceCall(ctx context.Context, req dialer.CallRequest) (*dialer.CallAck, error) {
	m.mu.Lock()
	m.Placed = append(m.Placed, req)
	m.mu.Unlock()

	if m.PlaceCallFunc != nil {
		return m.PlaceCallFunc(ctx, req)
	}
	return &dialer.CallAck{ProviderID: "call-" + req.PhoneNumber}, nil
}

// mockNotifier records batch notifications
type mockNotifier struct {
	mu   sync.Mutex
	Sent []notify.BatchNotification
}

func (m *mockNotifier) NotifyCampaignBatchResult(n notify.BatchNotification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, n)
}

func strPtr(s string) *string { return &s }
