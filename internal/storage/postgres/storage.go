package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/storage"
)

// uniqueViolation is the SQLSTATE for a duplicate primary key
const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface.
// Games are stored as JSONB documents; updates lock the row with
// SELECT ... FOR UPDATE so writers to one game are serialized.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, optionally applying migrations first
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.RunMigrations {
		if err := RunMigrations(cfg.URL); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Close releases all pooled connections
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	doc, err := json.Marshal(game)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO games (id, status, version, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		string(game.ID), string(game.Status), game.Version, doc, game.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: game %s already exists", model.ErrConflict, game.ID)
	}
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return scanGame(s.pool.QueryRow(ctx, `SELECT document FROM games WHERE id = $1`, string(id)))
}

func scanGame(row pgx.Row) (*model.Game, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(doc, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	game, err := scanGame(tx.QueryRow(ctx, `SELECT document FROM games WHERE id = $1 FOR UPDATE`, string(id)))
	if err != nil {
		return nil, err
	}

	events, err := fn(game)
	if err != nil {
		return nil, err
	}
	game.Version++

	doc, err := json.Marshal(game)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE games SET status = $2, version = $3, document = $4, updated_at = $5
		WHERE id = $1`,
		string(id), string(game.Status), game.Version, doc, game.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(events) > 0 {
		batch := &pgx.Batch{}
		for _, e := range events {
			payload, err := json.Marshal(e)
			if err != nil {
				return nil, err
			}
			batch.Queue(`
				INSERT INTO game_events (game_id, seq, action, payload, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				string(id), e.Seq, string(e.Action), payload, e.CreatedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if isUniqueViolation(err) {
				return nil, model.ErrConflict
			}
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Storage) ListEvents(ctx context.Context, id model.GameID) ([]model.GameEvent, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, string(id)).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrGameNotFound
	}

	rows, err := s.pool.Query(ctx, `SELECT payload FROM game_events WHERE game_id = $1 ORDER BY seq`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.GameEvent{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e model.GameEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decoding event for game %s: %w", id, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Format operations

func (s *Storage) SaveFormat(ctx context.Context, format model.GameFormatRules) error {
	doc, err := json.Marshal(format)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO formats (id, document) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`,
		string(format.ID), doc,
	)
	return err
}

func (s *Storage) GetFormat(ctx context.Context, id model.FormatID) (model.GameFormatRules, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM formats WHERE id = $1`, string(id)).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameFormatRules{}, model.ErrFormatNotFound
		}
		return model.GameFormatRules{}, err
	}

	var format model.GameFormatRules
	if err := json.Unmarshal(doc, &format); err != nil {
		return model.GameFormatRules{}, err
	}
	return format, nil
}

func (s *Storage) ListFormats(ctx context.Context) ([]model.GameFormatRules, error) {
	rows, err := s.pool.Query(ctx, `SELECT document FROM formats ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	formats := []model.GameFormatRules{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var f model.GameFormatRules
		if err := json.Unmarshal(doc, &f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, rows.Err()
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	doc, err := json.Marshal(team)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO teams (id, document, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		string(team.ID), doc,
	)
	return err
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM teams WHERE id = $1`, string(id)).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}

	var team model.Team
	if err := json.Unmarshal(doc, &team); err != nil {
		return nil, err
	}
	return &team, nil
}
