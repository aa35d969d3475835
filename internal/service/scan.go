package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuspass/outpass-server/internal/audit"
	"github.com/campuspass/outpass-server/internal/config"
	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/notify"
	"github.com/campuspass/outpass-server/internal/qr"
	"github.com/campuspass/outpass-server/internal/repository"
)

type ScanResult struct {
	PersonID    string  `json:"personId"`
	Kind        qr.Kind `json:"kind"`
	Destination string  `json:"destination"`
	Notified    bool    `json:"notified"`
}

// ScanService consumes a scanned gate-pass credential, resolves the request
// it refers to, and applies the exit or return transition. The lookup and
// the mutation are split into a find plus a conditional write whose
// predicate re-checks the expected prior state, so a second concurrent scan
// of the same physical credential loses the race and fails with a
// state-conflict error rather than double-recording.
type ScanService struct {
	gatePassRepo repository.GatePassRepository
	memberRepo   repository.MemberRepository
	push         notify.PushSender
	sms          notify.SMSSender
	now          func() time.Time
}

func NewScanService(
	gatePassRepo repository.GatePassRepository,
	memberRepo repository.MemberRepository,
	push notify.PushSender,
	sms notify.SMSSender,
) *ScanService {
	return &ScanService{
		gatePassRepo: gatePassRepo,
		memberRepo:   memberRepo,
		push:         push,
		sms:          sms,
		now:          time.Now,
	}
}

// ProcessScan handles one guard scan. Decode errors and credential checks
// reject before any mutation; notification failures never fail the scan,
// since the gate-pass mutation has already committed by the time sends run.
func (s *ScanService) ProcessScan(ctx context.Context, raw []byte, guardFacilityID string) (*ScanResult, error) {
	payload, err := qr.Decode(raw)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventCredentialInvalid,
			FacilityID: guardFacilityID,
		})
		return nil, err
	}

	pass, ok := payload.(qr.GatePass)
	if !ok {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventCredentialInvalid,
			FacilityID: guardFacilityID,
		})
		return nil, apperrors.InvalidInput("credential", "a session-join credential cannot be scanned at the gate")
	}

	member, err := s.memberRepo.FindByID(ctx, pass.PersonID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if member == nil {
		return nil, apperrors.NoActiveFacility()
	}
	if member.FacilityID != guardFacilityID {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventWrongFacilityScan,
			PersonID:   pass.PersonID,
			FacilityID: guardFacilityID,
			Details:    map[string]interface{}{"boundFacilityId": member.FacilityID},
		})
		return nil, apperrors.WrongFacility()
	}

	var req *model.GatePassRequest
	scannedAt := s.now()

	switch pass.Kind {
	case qr.KindExit:
		req, err = s.recordExit(ctx, pass.PersonID, guardFacilityID, scannedAt)
	case qr.KindReturn:
		req, err = s.recordReturn(ctx, pass.PersonID, guardFacilityID, scannedAt)
	default:
		return nil, apperrors.MalformedPayload(fmt.Errorf("unexpected credential kind %q", pass.Kind))
	}
	if err != nil {
		return nil, err
	}

	notified := s.notifyScan(ctx, member, req, pass.Kind, scannedAt)

	log.Info().
		Str("requestId", req.ID).
		Str("personId", req.PersonID).
		Str("kind", string(pass.Kind)).
		Bool("notified", notified).
		Msg("gate scan processed")

	return &ScanResult{
		PersonID:    req.PersonID,
		Kind:        pass.Kind,
		Destination: req.Destination,
		Notified:    notified,
	}, nil
}

func (s *ScanService) recordExit(ctx context.Context, personID, facilityID string, at time.Time) (*model.GatePassRequest, error) {
	req, err := s.gatePassRepo.FindLatestApprovedUnexited(ctx, personID, facilityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if req == nil {
		return nil, apperrors.NoApprovedRequest()
	}

	ok, err := s.gatePassRepo.MarkExited(ctx, req.ID, at)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !ok {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventScanConflict,
			PersonID:  personID,
			SessionID: req.SessionID,
			Details:   map[string]interface{}{"requestId": req.ID, "direction": "exit"},
		})
		return nil, apperrors.NoApprovedRequest()
	}

	req.ActualExitAt = &at
	return req, nil
}

func (s *ScanService) recordReturn(ctx context.Context, personID, facilityID string, at time.Time) (*model.GatePassRequest, error) {
	req, err := s.gatePassRepo.FindLatestAwaitingReturn(ctx, personID, facilityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if req == nil {
		return nil, apperrors.NoAwaitingReturn()
	}

	ok, err := s.gatePassRepo.MarkReturned(ctx, req.ID, at)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !ok {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventScanConflict,
			PersonID:  personID,
			SessionID: req.SessionID,
			Details:   map[string]interface{}{"requestId": req.ID, "direction": "return"},
		})
		return nil, apperrors.NoAwaitingReturn()
	}

	req.ActualReturnAt = &at
	req.Status = model.GatePassStatusCompleted
	return req, nil
}

// notifyScan attempts best-effort push and SMS sends. It runs detached from
// the request's cancellation with a bounded timeout: the scan result only
// reports whether at least one channel succeeded.
func (s *ScanService) notifyScan(ctx context.Context, member *model.Member, req *model.GatePassRequest, kind qr.Kind, at time.Time) bool {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.NotifyTimeout)
	defer cancel()

	direction := "exit"
	if kind == qr.KindReturn {
		direction = "return"
	}
	stamp := at.Local().Format("Jan 2, 2006 3:04 PM")
	body := fmt.Sprintf("Gate %s recorded at %s. Destination: %s", direction, stamp, req.Destination)

	var pushOK, smsOK bool
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		pushOK = s.push.Send(notifyCtx, member.ID, "Gate pass update", body, map[string]string{
			"requestId": req.ID,
			"direction": direction,
		})
	}()

	if member.ContactPhone != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := s.sms.Send(notifyCtx, *member.ContactPhone, fmt.Sprintf("%s: %s", member.Name, body))
			smsOK = result.Success
		}()
	}

	wg.Wait()

	if !pushOK && !smsOK {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventNotificationFailed,
			PersonID: member.ID,
			Details:  map[string]interface{}{"requestId": req.ID, "direction": direction},
		})
	}

	return pushOK || smsOK
}
