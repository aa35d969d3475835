package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/qr"
	"github.com/campuspass/outpass-server/internal/repository"
)

type SubmitParams struct {
	PersonID    string
	Description string
	Destination string
	WindowStart time.Time
	WindowEnd   time.Time
}

// ActiveRequestView is the person-facing state snapshot: the latest request
// plus whichever credential, if any, the client should currently render.
// Credential emission is a pure query; only a guard scan advances state.
type ActiveRequestView struct {
	Request          *model.GatePassRequest `json:"request,omitempty"`
	AwaitingLocation bool                   `json:"awaitingLocation"`
	Credential       string                 `json:"credential,omitempty"`
	CooldownSeconds  int                    `json:"cooldownSeconds,omitempty"`
}

// LifecycleService owns the gate-pass request state machine:
// pending -> approved/rejected, then approved -> exit recorded -> location
// recorded -> completed. Exit and return mutations live in the scan
// processor; this service only creates, decides, and emits credentials.
type LifecycleService struct {
	gatePassRepo repository.GatePassRepository
	memberRepo   repository.MemberRepository
	cooldown     time.Duration
	now          func() time.Time
}

func NewLifecycleService(
	gatePassRepo repository.GatePassRepository,
	memberRepo repository.MemberRepository,
	cooldown time.Duration,
) *LifecycleService {
	return &LifecycleService{
		gatePassRepo: gatePassRepo,
		memberRepo:   memberRepo,
		cooldown:     cooldown,
		now:          time.Now,
	}
}

// Submit creates a new pending request for the person's current facility
// session. The window must be a valid interval, the person must hold an
// active session binding, no other active request may exist, and any recent
// rejection must have cooled down.
func (s *LifecycleService) Submit(ctx context.Context, params SubmitParams) (*model.GatePassRequest, error) {
	if params.Destination == "" {
		return nil, apperrors.MissingRequired("destination")
	}
	if !params.WindowEnd.After(params.WindowStart) {
		return nil, apperrors.InvalidWindow()
	}

	member, err := s.memberRepo.FindByID(ctx, params.PersonID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if member == nil || member.SessionID == nil {
		return nil, apperrors.NoActiveFacility()
	}

	rejected, err := s.gatePassRepo.FindLatestRejected(ctx, params.PersonID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if rejected != nil && rejected.DecidedAt != nil {
		if remaining := CooldownRemaining(*rejected.DecidedAt, s.now(), s.cooldown); remaining > 0 {
			return nil, apperrors.CooldownActive(remaining)
		}
	}

	latest, err := s.gatePassRepo.FindLatestByPerson(ctx, params.PersonID, member.FacilityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if latest != nil && latest.Active() {
		return nil, apperrors.ActiveRequestExists()
	}

	req, err := s.gatePassRepo.Create(ctx, model.CreateGatePassParams{
		ID:          uuid.NewString(),
		PersonID:    params.PersonID,
		FacilityID:  member.FacilityID,
		SessionID:   *member.SessionID,
		Description: params.Description,
		Destination: params.Destination,
		WindowStart: params.WindowStart,
		WindowEnd:   params.WindowEnd,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("requestId", req.ID).
		Str("personId", req.PersonID).
		Str("facilityId", req.FacilityID).
		Msg("gate-pass request submitted")

	return req, nil
}

// Decide moves a pending request to approved or rejected. The transition is
// a conditional write on the pending status, so a second concurrent
// decision loses the race and fails with NotPending instead of silently
// overwriting the first.
func (s *LifecycleService) Decide(ctx context.Context, requestID string, outcome model.DecisionOutcome, approverID string) (*model.GatePassRequest, error) {
	if outcome != model.DecisionApproved && outcome != model.DecisionRejected {
		return nil, apperrors.InvalidInput("outcome", string(outcome))
	}

	req, err := s.gatePassRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if req == nil {
		return nil, apperrors.NotFound("Request")
	}

	decidedAt := s.now()
	ok, err := s.gatePassRepo.MarkDecided(ctx, requestID, outcome, approverID, decidedAt)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !ok {
		return nil, apperrors.NotPending()
	}

	log.Info().
		Str("requestId", requestID).
		Str("approverId", approverID).
		Str("outcome", string(outcome)).
		Msg("gate-pass request decided")

	return s.gatePassRepo.FindByID(ctx, requestID)
}

// ExitCredential emits the scannable exit credential for an approved
// request. It is a side-effect-free query: repeated calls return an
// equivalent credential and never advance state. Only the guard scan does.
func (s *LifecycleService) ExitCredential(ctx context.Context, requestID string) (qr.GatePass, error) {
	req, err := s.gatePassRepo.FindByID(ctx, requestID)
	if err != nil {
		return qr.GatePass{}, apperrors.Database(err)
	}
	if req == nil {
		return qr.GatePass{}, apperrors.NotFound("Request")
	}

	if req.Status != model.GatePassStatusApproved || req.DecidedAt == nil || req.ActualExitAt != nil {
		return qr.GatePass{}, apperrors.NoApprovedRequest()
	}

	return s.credentialFor(req, qr.KindExit, *req.DecidedAt), nil
}

// RecordReturnLocation stores where the person can be reached while out.
// A return credential is only emitted once this is set.
func (s *LifecycleService) RecordReturnLocation(ctx context.Context, requestID, personID, location string) (*model.GatePassRequest, error) {
	if location == "" {
		return nil, apperrors.MissingRequired("location")
	}

	req, err := s.gatePassRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if req == nil {
		return nil, apperrors.NotFound("Request")
	}
	if req.PersonID != personID {
		return nil, apperrors.Forbidden("Request belongs to another person")
	}

	ok, err := s.gatePassRepo.SetReturnLocation(ctx, requestID, location)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "Request has no open exit to attach a location to")
	}

	log.Info().Str("requestId", requestID).Msg("return location recorded")

	return s.gatePassRepo.FindByID(ctx, requestID)
}

// ReturnCredential emits the scannable return credential. Valid only once
// the exit is recorded and a return location is on file; like the exit
// emitter it is idempotent and mutates nothing.
func (s *LifecycleService) ReturnCredential(ctx context.Context, requestID string) (qr.GatePass, error) {
	req, err := s.gatePassRepo.FindByID(ctx, requestID)
	if err != nil {
		return qr.GatePass{}, apperrors.Database(err)
	}
	if req == nil {
		return qr.GatePass{}, apperrors.NotFound("Request")
	}

	if req.Status != model.GatePassStatusApproved ||
		req.ActualExitAt == nil ||
		req.ReturnLocation == nil ||
		req.ActualReturnAt != nil {
		return qr.GatePass{}, apperrors.NoAwaitingReturn()
	}

	return s.credentialFor(req, qr.KindReturn, *req.ActualExitAt), nil
}

// ActiveView assembles the person's current lifecycle snapshot, including
// the encoded credential their client should render, if any.
func (s *LifecycleService) ActiveView(ctx context.Context, personID string) (*ActiveRequestView, error) {
	member, err := s.memberRepo.FindByID(ctx, personID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if member == nil {
		return nil, apperrors.NoActiveFacility()
	}

	view := &ActiveRequestView{}

	req, err := s.gatePassRepo.FindLatestByPerson(ctx, personID, member.FacilityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if req == nil {
		return view, nil
	}
	view.Request = req

	switch {
	case req.Status == model.GatePassStatusApproved && req.DecidedAt != nil && req.ActualExitAt == nil:
		cred := s.credentialFor(req, qr.KindExit, *req.DecidedAt)
		encoded, err := qr.Encode(cred)
		if err != nil {
			return nil, apperrors.Internal("encode exit credential").WithCause(err)
		}
		view.Credential = string(encoded)

	case req.AwaitingLocation():
		view.AwaitingLocation = true

	case req.Status == model.GatePassStatusApproved && req.ActualExitAt != nil && req.ReturnLocation != nil && req.ActualReturnAt == nil:
		cred := s.credentialFor(req, qr.KindReturn, *req.ActualExitAt)
		encoded, err := qr.Encode(cred)
		if err != nil {
			return nil, apperrors.Internal("encode return credential").WithCause(err)
		}
		view.Credential = string(encoded)

	case req.Status == model.GatePassStatusRejected && req.DecidedAt != nil:
		view.CooldownSeconds = int(CooldownRemaining(*req.DecidedAt, s.now(), s.cooldown).Seconds())
	}

	return view, nil
}

// credentialFor derives the ephemeral credential from stored request state.
// IssuedAt comes from the transition timestamp rather than the wall clock so
// repeated emissions are byte-for-byte identical.
func (s *LifecycleService) credentialFor(req *model.GatePassRequest, kind qr.Kind, issuedAt time.Time) qr.GatePass {
	return qr.GatePass{
		Kind:       kind,
		PersonID:   req.PersonID,
		FacilityID: req.FacilityID,
		SessionID:  req.SessionID,
		IssuedAt:   issuedAt.Unix(),
	}
}
