package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/shivapreetham/quiz-application/internal/domain"
)

// SetLoader loads problem-set JSONB from Postgres.
type SetLoader struct {
	pool *pgxpool.Pool
}

func NewSetLoader(pool *pgxpool.Pool) *SetLoader {
	return &SetLoader{pool: pool}
}

func (l *SetLoader) LoadSet(ctx context.Context, setID string) (domain.ProblemSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM problem_sets WHERE id=$1`, setID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProblemSet{}, domain.ErrProblemSetNotFound
	}
	if err != nil {
		return domain.ProblemSet{}, fmt.Errorf("load problem set: %w", err)
	}
	var set domain.ProblemSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.ProblemSet{}, fmt.Errorf("unmarshal problem set: %w", err)
	}
	set.ID = setID
	return set, nil
}
