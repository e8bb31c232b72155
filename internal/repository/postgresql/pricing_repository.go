package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docgen-worker-service/internal/entity"
)

// Prices in minor currency units, used when the pricing table has no row
// for a kind.
var defaultPrices = map[entity.TaskKind]int64{
	entity.KindSlideDeck: 20000,
	entity.KindPitchDeck: 35000,
	entity.KindDocument:  25000,
}

type PricingRepository struct {
	pool *pgxpool.Pool
}

func NewPricingRepository(pool *pgxpool.Pool) *PricingRepository {
	return &PricingRepository{pool: pool}
}

func (r *PricingRepository) Price(ctx context.Context, kind entity.TaskKind) (int64, error) {
	const q = `SELECT price FROM pricing WHERE kind = $1;`

	var price int64
	err := r.pool.QueryRow(ctx, q, string(kind)).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if p, ok := defaultPrices[kind]; ok {
				return p, nil
			}
			return 0, ErrNotFound
		}
		return 0, err
	}
	return price, nil
}
