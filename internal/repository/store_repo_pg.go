package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreRepository is the read-only view of venues owned by the catalogue service.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

type PGStoreRepository struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) StoreRepository {
	return &PGStoreRepository{db: db}
}

func (r *PGStoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	var s domain.Store
	err := r.db.QueryRow(ctx, `SELECT id, name, address, phone FROM stores WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Address, &s.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: store %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ StoreRepository = (*PGStoreRepository)(nil)
