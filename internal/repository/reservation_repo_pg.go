package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByCallSID(ctx context.Context, sid string) (*domain.Reservation, error)
	SetCallCorrelationID(ctx context.Context, id, sid string) error
	// UpdateIfPending persists the terminal fields of r only while the stored row is
	// still pending. It returns domain.ErrAlreadyProcessed when another writer got there first.
	UpdateIfPending(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, store_id, user_id, caller_name, caller_phone, party_size, arrival_minutes, arrival_time,
	status, call_correlation_id, confirmed_at, rejection_reason, expires_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var r domain.Reservation
	if err := row.Scan(&r.ID, &r.StoreID, &r.UserID, &r.CallerName, &r.CallerPhone, &r.PartySize, &r.ArrivalMinutes, &r.ArrivalTime,
		&r.Status, &r.CallCorrelationID, &r.ConfirmedAt, &r.RejectionReason, &r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PGReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	_, err := p.db.Exec(ctx, `INSERT INTO reservations (id, store_id, user_id, caller_name, caller_phone, party_size, arrival_minutes,
		arrival_time, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.StoreID, r.UserID, r.CallerName, r.CallerPhone, r.PartySize, r.ArrivalMinutes,
		r.ArrivalTime, r.Status, r.ExpiresAt, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (p *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := scanReservation(p.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return r, err
}

func (p *PGReservationRepository) GetByCallSID(ctx context.Context, sid string) (*domain.Reservation, error) {
	r, err := scanReservation(p.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE call_correlation_id=$1`, sid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: call %s", domain.ErrNotFound, sid)
	}
	return r, err
}

func (p *PGReservationRepository) SetCallCorrelationID(ctx context.Context, id, sid string) error {
	cmd, err := p.db.Exec(ctx, `UPDATE reservations SET call_correlation_id=$1, updated_at=now() WHERE id=$2`, sid, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return nil
}

func (p *PGReservationRepository) UpdateIfPending(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	row := p.db.QueryRow(ctx, `UPDATE reservations
		SET status=$1, confirmed_at=$2, rejection_reason=$3, updated_at=$4
		WHERE id=$5 AND status=$6
		RETURNING `+reservationColumns,
		r.Status, r.ConfirmedAt, r.RejectionReason, r.UpdatedAt, r.ID, domain.ReservationStatusPending)
	updated, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrAlreadyProcessed, r.ID)
	}
	return updated, err
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
