package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/ids"
	"atelier/storefront/internal/models"
)

const consultationColumns = `
	id, user_id, name, email, phone, service, message, preferred_date, status,
	assigned_to, notes, created_at, updated_at, completed_at, cancelled_at
`

type ConsultationRepository struct {
	pool     *pgxpool.Pool
	profiles *ProfileRepository
	log      zerolog.Logger
}

func NewConsultationRepository(pool *pgxpool.Pool, profiles *ProfileRepository, log zerolog.Logger) *ConsultationRepository {
	return &ConsultationRepository{pool: pool, profiles: profiles, log: log}
}

// ListWithRequesters returns all consultations, newest first, each joined
// with its requester's profile details. The profiles are fetched in one batch
// query; if that lookup fails the list still succeeds with nil requesters.
func (r *ConsultationRepository) ListWithRequesters(ctx context.Context) ([]models.ConsultationWithRequester, error) {
	const query = `SELECT ` + consultationColumns + ` FROM consultations ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "consultations", Err: err}
	}
	defer rows.Close()

	var consultations []models.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, &apperr.DataAccessError{Op: "scan", Table: "consultations", Err: err}
		}
		consultations = append(consultations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "consultations", Err: err}
	}

	seen := make(map[string]struct{})
	var userIDs []string
	for _, c := range consultations {
		if c.UserID == nil {
			continue
		}
		if _, ok := seen[*c.UserID]; ok {
			continue
		}
		seen[*c.UserID] = struct{}{}
		userIDs = append(userIDs, *c.UserID)
	}

	profileByID, err := r.profiles.ListByIDs(ctx, userIDs)
	if err != nil {
		r.log.Error().Err(err).Msg("requester lookup failed, returning consultations without requester details")
		profileByID = nil
	}

	out := make([]models.ConsultationWithRequester, 0, len(consultations))
	for _, c := range consultations {
		joined := models.ConsultationWithRequester{Consultation: c}
		if c.UserID != nil {
			if p, ok := profileByID[*c.UserID]; ok {
				joined.Requester = &models.Requester{FullName: p.FullName, Email: p.Email}
			}
		}
		out = append(out, joined)
	}
	return out, nil
}

func (r *ConsultationRepository) GetByID(ctx context.Context, id string) (models.ConsultationWithRequester, error) {
	const query = `SELECT ` + consultationColumns + ` FROM consultations WHERE id = $1`

	c, err := scanConsultation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ConsultationWithRequester{}, apperr.ErrNotFound
		}
		return models.ConsultationWithRequester{}, &apperr.DataAccessError{Op: "get", Table: "consultations", Err: err}
	}

	joined := models.ConsultationWithRequester{Consultation: c}
	if c.UserID != nil {
		if p, err := r.profiles.GetByID(ctx, *c.UserID); err == nil {
			joined.Requester = &models.Requester{FullName: p.FullName, Email: p.Email}
		} else if !apperr.IsNotFound(err) {
			r.log.Error().Err(err).Str("consultation_id", id).Msg("requester lookup failed")
		}
	}
	return joined, nil
}

// Create persists a new booking request with status pending.
func (r *ConsultationRepository) Create(ctx context.Context, c models.Consultation) (models.Consultation, error) {
	if c.ID == "" {
		c.ID = ids.New()
	}
	c.Status = models.ConsultationStatusPending

	const query = `
		INSERT INTO consultations (id, user_id, name, email, phone, service, message, preferred_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + consultationColumns

	created, err := scanConsultation(r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Service, c.Message, c.PreferredDate, c.Status, c.Notes,
	))
	if err != nil {
		return models.Consultation{}, &apperr.DataAccessError{Op: "insert", Table: "consultations", Err: err}
	}
	return created, nil
}

// UpdateStatus moves a consultation to the given status, stamping
// completed_at or cancelled_at exactly when the row enters those states. No
// transition validation is applied: any status may follow any other.
func (r *ConsultationRepository) UpdateStatus(ctx context.Context, id string, status models.ConsultationStatus, assignedTo *string) (models.Consultation, error) {
	now := time.Now().UTC()
	completedAt, cancelledAt := statusStamps(status, now)

	const query = `
		UPDATE consultations SET
			status = $2,
			assigned_to = COALESCE($3, assigned_to),
			completed_at = COALESCE($4, completed_at),
			cancelled_at = COALESCE($5, cancelled_at),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + consultationColumns

	updated, err := scanConsultation(r.pool.QueryRow(ctx, query, id, status, assignedTo, completedAt, cancelledAt, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Consultation{}, apperr.ErrNotFound
		}
		return models.Consultation{}, &apperr.DataAccessError{Op: "update", Table: "consultations", Err: err}
	}
	return updated, nil
}

func (r *ConsultationRepository) UpdateNotes(ctx context.Context, id string, notes string) (models.Consultation, error) {
	const query = `
		UPDATE consultations SET notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + consultationColumns

	updated, err := scanConsultation(r.pool.QueryRow(ctx, query, id, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Consultation{}, apperr.ErrNotFound
		}
		return models.Consultation{}, &apperr.DataAccessError{Op: "update", Table: "consultations", Err: err}
	}
	return updated, nil
}

// statusStamps returns the lifecycle timestamps to set for a status change.
// Only the timestamp matching the new status is non-nil; COALESCE in the
// update keeps any previously recorded stamp.
func statusStamps(status models.ConsultationStatus, now time.Time) (completedAt, cancelledAt *time.Time) {
	switch status {
	case models.ConsultationStatusCompleted:
		completedAt = &now
	case models.ConsultationStatusCancelled:
		cancelledAt = &now
	}
	return completedAt, cancelledAt
}

func scanConsultation(row pgx.Row) (models.Consultation, error) {
	var c models.Consultation
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Service,
		&c.Message,
		&c.PreferredDate,
		&c.Status,
		&c.AssignedTo,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.CompletedAt,
		&c.CancelledAt,
	)
	return c, err
}
