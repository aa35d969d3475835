package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuspass/outpass-server/internal/model"
)

// GatePassRepository persists gate-pass requests. Every state-advancing
// write carries its expected prior state in the WHERE clause and reports
// whether a row matched, so services can distinguish a lost race from
// success without a separate read.
type GatePassRepository interface {
	Create(ctx context.Context, params model.CreateGatePassParams) (*model.GatePassRequest, error)
	FindByID(ctx context.Context, id string) (*model.GatePassRequest, error)
	// FindLatestByPerson returns the person's most recent request for the
	// facility regardless of status.
	FindLatestByPerson(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error)
	// FindLatestRejected returns the person's most recent rejected request.
	// Its decided_at drives the submission cooldown.
	FindLatestRejected(ctx context.Context, personID string) (*model.GatePassRequest, error)
	// FindLatestApprovedUnexited returns the approved request an exit scan
	// would apply to, or nil.
	FindLatestApprovedUnexited(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error)
	// FindLatestAwaitingReturn returns the exited request with a recorded
	// return location that a return scan would complete, or nil.
	FindLatestAwaitingReturn(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error)
	// MarkDecided moves pending -> approved/rejected. Returns false when the
	// request was not pending anymore.
	MarkDecided(ctx context.Context, id string, outcome model.DecisionOutcome, approverID string, decidedAt time.Time) (bool, error)
	// MarkExited records the physical exit scan. Returns false when the exit
	// was already recorded or the request is not approved.
	MarkExited(ctx context.Context, id string, exitAt time.Time) (bool, error)
	// SetReturnLocation records where the person can be reached while out.
	// Returns false unless the request has exited and not yet returned.
	SetReturnLocation(ctx context.Context, id string, location string) (bool, error)
	// MarkReturned records the return scan and completes the request.
	// Returns false unless exit and return location are both recorded and the
	// return is still open.
	MarkReturned(ctx context.Context, id string, returnAt time.Time) (bool, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) GatePassRepository
}

// gatePassDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type gatePassDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type gatePassRepo struct {
	db gatePassDB
}

func NewGatePassRepository(db *sqlx.DB) GatePassRepository {
	return &gatePassRepo{db: db}
}

func (r *gatePassRepo) WithTx(tx *sqlx.Tx) GatePassRepository {
	return &gatePassRepo{db: tx}
}

func (r *gatePassRepo) Create(ctx context.Context, params model.CreateGatePassParams) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		INSERT INTO gate_pass_requests
			(id, person_id, facility_id, session_id, description, destination, window_start, window_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING *
	`, params.ID, params.PersonID, params.FacilityID, params.SessionID,
		params.Description, params.Destination, params.WindowStart, params.WindowEnd)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gatePassRepo) FindByID(ctx context.Context, id string) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM gate_pass_requests WHERE id = $1
	`, id)
	return HandleNotFound(&req, err)
}

func (r *gatePassRepo) FindLatestByPerson(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM gate_pass_requests
		WHERE person_id = $1 AND facility_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, personID, facilityID)
	return HandleNotFound(&req, err)
}

func (r *gatePassRepo) FindLatestRejected(ctx context.Context, personID string) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM gate_pass_requests
		WHERE person_id = $1 AND status = 'rejected'
		ORDER BY decided_at DESC
		LIMIT 1
	`, personID)
	return HandleNotFound(&req, err)
}

func (r *gatePassRepo) FindLatestApprovedUnexited(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM gate_pass_requests
		WHERE person_id = $1 AND facility_id = $2
		AND status = 'approved'
		AND actual_exit_at IS NULL
		ORDER BY decided_at DESC
		LIMIT 1
	`, personID, facilityID)
	return HandleNotFound(&req, err)
}

func (r *gatePassRepo) FindLatestAwaitingReturn(ctx context.Context, personID, facilityID string) (*model.GatePassRequest, error) {
	var req model.GatePassRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM gate_pass_requests
		WHERE person_id = $1 AND facility_id = $2
		AND status = 'approved'
		AND actual_exit_at IS NOT NULL
		AND return_location IS NOT NULL
		AND actual_return_at IS NULL
		ORDER BY actual_exit_at DESC
		LIMIT 1
	`, personID, facilityID)
	return HandleNotFound(&req, err)
}

func (r *gatePassRepo) MarkDecided(ctx context.Context, id string, outcome model.DecisionOutcome, approverID string, decidedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gate_pass_requests SET
			status = $2,
			approver_id = $3,
			decided_at = $4,
			updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, string(outcome), approverID, decidedAt)
	if err != nil {
		return false, err
	}
	return rowsAffected(result)
}

func (r *gatePassRepo) MarkExited(ctx context.Context, id string, exitAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gate_pass_requests SET
			actual_exit_at = $2,
			updated_at = $2
		WHERE id = $1 AND status = 'approved' AND actual_exit_at IS NULL
	`, id, exitAt)
	if err != nil {
		return false, err
	}
	return rowsAffected(result)
}

func (r *gatePassRepo) SetReturnLocation(ctx context.Context, id string, location string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gate_pass_requests SET
			return_location = $2,
			updated_at = $3
		WHERE id = $1 AND status = 'approved'
		AND actual_exit_at IS NOT NULL
		AND actual_return_at IS NULL
	`, id, location, time.Now())
	if err != nil {
		return false, err
	}
	return rowsAffected(result)
}

func (r *gatePassRepo) MarkReturned(ctx context.Context, id string, returnAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gate_pass_requests SET
			actual_return_at = $2,
			status = 'completed',
			updated_at = $2
		WHERE id = $1 AND status = 'approved'
		AND actual_exit_at IS NOT NULL
		AND return_location IS NOT NULL
		AND actual_return_at IS NULL
	`, id, returnAt)
	if err != nil {
		return false, err
	}
	return rowsAffected(result)
}

func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
