package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS requisitions (
	id                   TEXT PRIMARY KEY,
	status               TEXT NOT NULL,
	created_at           TIMESTAMP NOT NULL,
	dept_tracking_no     TEXT NOT NULL DEFAULT '',
	date                 TEXT NOT NULL DEFAULT '',
	branch               TEXT NOT NULL DEFAULT '',
	dept                 TEXT NOT NULL DEFAULT '',
	requestor_name       TEXT NOT NULL DEFAULT '',
	vendor_code          TEXT NOT NULL DEFAULT '',
	vendor_details       TEXT NOT NULL DEFAULT '',
	line_items           TEXT NOT NULL DEFAULT '[]',
	approval_requestor   TEXT NOT NULL DEFAULT '{}',
	approval_team_leader TEXT NOT NULL DEFAULT '{}',
	approval_director    TEXT NOT NULL DEFAULT '{}',
	entered_by           TEXT NOT NULL DEFAULT '',
	entered_date         TEXT NOT NULL DEFAULT '',
	spo_no               TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_requisitions_status ON requisitions(status);
`

// RequisitionRepository is the SQLite-backed Store implementation. Line
// items and approval slots are persisted as JSON columns; the document
// round-trips through the same JSON shape it is served with.
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository.
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) *RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

// Init creates the requisitions table if it does not exist.
func (r *RequisitionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		r.logger.Error("Failed to initialize schema", zap.Error(err))
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const columns = `id, status, created_at, dept_tracking_no, date, branch, dept,
	requestor_name, vendor_code, vendor_details, line_items,
	approval_requestor, approval_team_leader, approval_director,
	entered_by, entered_date, spo_no`

// List returns all stored requisitions. Order is unspecified; callers
// sort for display.
func (r *RequisitionRepository) List(ctx context.Context) ([]*models.Requisition, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM requisitions`)
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	defer rows.Close()

	var reqs []*models.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// GetByID retrieves one requisition, or (nil, nil) when absent.
func (r *RequisitionRepository) GetByID(ctx context.Context, id string) (*models.Requisition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM requisitions WHERE id = ?`, id)

	req, err := scanRequisition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return req, nil
}

// Upsert stores the full document, replacing any existing record with
// the same id.
func (r *RequisitionRepository) Upsert(ctx context.Context, req *models.Requisition) error {
	items, err := json.Marshal(req.LineItems)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}
	apprReq, err := json.Marshal(req.ApprovalRequestor)
	if err != nil {
		return fmt.Errorf("failed to marshal approval: %w", err)
	}
	apprTL, err := json.Marshal(req.ApprovalTeamLeader)
	if err != nil {
		return fmt.Errorf("failed to marshal approval: %w", err)
	}
	apprDir, err := json.Marshal(req.ApprovalDirector)
	if err != nil {
		return fmt.Errorf("failed to marshal approval: %w", err)
	}

	query := `
		INSERT INTO requisitions (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			created_at = excluded.created_at,
			dept_tracking_no = excluded.dept_tracking_no,
			date = excluded.date,
			branch = excluded.branch,
			dept = excluded.dept,
			requestor_name = excluded.requestor_name,
			vendor_code = excluded.vendor_code,
			vendor_details = excluded.vendor_details,
			line_items = excluded.line_items,
			approval_requestor = excluded.approval_requestor,
			approval_team_leader = excluded.approval_team_leader,
			approval_director = excluded.approval_director,
			entered_by = excluded.entered_by,
			entered_date = excluded.entered_date,
			spo_no = excluded.spo_no
	`

	_, err = r.db.ExecContext(ctx, query,
		req.ID,
		req.Status.String(),
		req.CreatedAt,
		req.DeptTrackingNo,
		req.Date,
		req.Branch,
		req.Dept,
		req.RequestorName,
		req.VendorCode,
		req.VendorDetails,
		string(items),
		string(apprReq),
		string(apprTL),
		string(apprDir),
		req.EnteredBy,
		req.EnteredDate,
		req.SpoNo,
	)
	if err != nil {
		r.logger.Error("Failed to upsert requisition", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert requisition: %w", err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting a missing id is
// not an error.
func (r *RequisitionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM requisitions WHERE id = ?`, id); err != nil {
		r.logger.Error("Failed to delete requisition", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete requisition: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRequisition(s scanner) (*models.Requisition, error) {
	var req models.Requisition
	var status string
	var createdAt time.Time
	var items, apprReq, apprTL, apprDir string

	err := s.Scan(
		&req.ID,
		&status,
		&createdAt,
		&req.DeptTrackingNo,
		&req.Date,
		&req.Branch,
		&req.Dept,
		&req.RequestorName,
		&req.VendorCode,
		&req.VendorDetails,
		&items,
		&apprReq,
		&apprTL,
		&apprDir,
		&req.EnteredBy,
		&req.EnteredDate,
		&req.SpoNo,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan requisition: %w", err)
	}

	req.Status = models.Status(status)
	req.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(items), &req.LineItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line items: %w", err)
	}
	if err := json.Unmarshal([]byte(apprReq), &req.ApprovalRequestor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval: %w", err)
	}
	if err := json.Unmarshal([]byte(apprTL), &req.ApprovalTeamLeader); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval: %w", err)
	}
	if err := json.Unmarshal([]byte(apprDir), &req.ApprovalDirector); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval: %w", err)
	}

	return &req, nil
}
