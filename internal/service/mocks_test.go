package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/notify"
	"github.com/campuspass/outpass-server/internal/repository"
)

// Mock repositories

type mockGatePassRepo struct {
	mock.Mock
}

func (m *mockGatePassRepo) Create(ctx context.Context, params model.CreateGatePassParams) (*model.GatePassRequest, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) FindByID(ctx context.Context, id string) (*model.GatePassRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) FindLatestByPerson(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	args := m.Called(ctx, personID, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) FindLatestRejected(ctx context.Context, personID string) (*model.GatePassRequest, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) FindLatestApprovedUnexited(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	args := m.Called(ctx, personID, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) FindLatestAwaitingReturn(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	args := m.Called(ctx, personID, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GatePassRequest), args.Error(1)
}

func (m *mockGatePassRepo) MarkDecided(ctx context.Context, id string, outcome model.DecisionOutcome, approverID string, decidedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, outcome, approverID, decidedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockGatePassRepo) MarkExited(ctx context.Context, id string, exitAt time.Time) (bool, error) {
	args := m.Called(ctx, id, exitAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockGatePassRepo) SetReturnLocation(ctx context.Context, id string, location string) (bool, error) {
	args := m.Called(ctx, id, location)
	return args.Bool(0), args.Error(1)
}

func (m *mockGatePassRepo) MarkReturned(ctx context.Context, id string, returnAt time.Time) (bool, error) {
	args := m.Called(ctx, id, returnAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockGatePassRepo) WithTx(tx *sqlx.Tx) repository.GatePassRepository {
	return m
}

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Member, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

type mockSessionCredentialRepo struct {
	mock.Mock
}

func (m *mockSessionCredentialRepo) Upsert(ctx context.Context, params model.UpsertSessionCredentialParams) (*model.SessionCredential, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionCredential), args.Error(1)
}

func (m *mockSessionCredentialRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.SessionCredential, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionCredential), args.Error(1)
}

func (m *mockSessionCredentialRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionCredentialRepo) WithTx(tx *sqlx.Tx) repository.SessionCredentialRepository {
	return m
}

// Mock notification senders

type mockPushSender struct {
	mock.Mock
}

func (m *mockPushSender) Send(ctx context.Context, personID, title, body string, data map[string]string) bool {
	args := m.Called(ctx, personID, title, body, data)
	return args.Bool(0)
}

type mockSMSSender struct {
	mock.Mock
}

func (m *mockSMSSender) Send(ctx context.Context, phone, message string) notify.SMSResult {
	args := m.Called(ctx, phone, message)
	return args.Get(0).(notify.SMSResult)
}

// Test fixtures

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
