package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"

	"holdco/internal/game"
)

const (
	leaderboardTable = "leaderboard_entries"

	colID                 = "id"
	colGameID             = "game_id"
	colInitials           = "initials"
	colHoldcoName         = "holdco_name"
	colScore              = "score"
	colGrade              = "grade"
	colEnterpriseValue    = "enterprise_value"
	colFounderEquityValue = "founder_equity_value"
	colBusinessCount      = "business_count"
	colDifficulty         = "difficulty"
	colDuration           = "duration"
	colCreatedAt          = "created_at"
)

var leaderboardColumns = []string{
	colID, colGameID, colInitials, colHoldcoName, colScore, colGrade,
	colEnterpriseValue, colFounderEquityValue, colBusinessCount,
	colDifficulty, colDuration, colCreatedAt,
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// LeaderboardStore keeps the ranked board in Postgres. Save replaces the
// whole board inside one transaction.
type LeaderboardStore struct {
	pool      *pgxpool.Pool
	txManager trm.Manager
}

var _ game.LeaderboardStore = (*LeaderboardStore)(nil)

func NewLeaderboardStore(pool *pgxpool.Pool) (*LeaderboardStore, error) {
	m, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		return nil, fmt.Errorf("create tx manager: %w", err)
	}
	return &LeaderboardStore{pool: pool, txManager: m}, nil
}

func (s *LeaderboardStore) Load(ctx context.Context) ([]game.LeaderboardEntry, error) {
	query := psql.Select(leaderboardColumns...).
		From(leaderboardTable).
		OrderBy(colFounderEquityValue+" DESC", colScore+" DESC", colCreatedAt+" ASC").
		Limit(uint64(game.MaxLeaderboardEntries))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	conn := trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, s.pool)
	rows, err := conn.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]game.LeaderboardEntry, 0, game.MaxLeaderboardEntries)
	for rows.Next() {
		var (
			e                    game.LeaderboardEntry
			difficulty, duration string
			createdAt            time.Time
		)
		if err := rows.Scan(
			&e.ID, &e.GameID, &e.Initials, &e.HoldcoName, &e.Score, &e.Grade,
			&e.EnterpriseValue, &e.FounderEquityValue, &e.BusinessCount,
			&difficulty, &duration, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Difficulty = game.Difficulty(difficulty)
		e.Duration = game.GameDuration(duration)
		e.CreatedAt = createdAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaderboardStore) Save(ctx context.Context, entries []game.LeaderboardEntry) error {
	return s.txManager.Do(ctx, func(ctx context.Context) error {
		conn := trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, s.pool)

		sqlStr, args, err := psql.Delete(leaderboardTable).ToSql()
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("clear leaderboard: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		insert := psql.Insert(leaderboardTable).Columns(leaderboardColumns...)
		for _, e := range entries {
			insert = insert.Values(
				e.ID, e.GameID, e.Initials, e.HoldcoName, e.Score, e.Grade,
				e.EnterpriseValue, e.FounderEquityValue, e.BusinessCount,
				string(e.Difficulty), string(e.Duration), e.CreatedAt,
			)
		}
		sqlStr, args, err = insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert leaderboard: %w", err)
		}
		return nil
	})
}
