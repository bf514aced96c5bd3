package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

var (
	_ Sink   = (*PostgresSink)(nil)
	_ BetLog = (*PostgresSink)(nil)
)

// PostgresSink stores matches, provider mappings, odds and bet attempts.
type PostgresSink struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresSink(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*PostgresSink, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(initCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	s := &PostgresSink{db: db, logger: logger.With("sink", "postgres")}
	if err := s.initSchema(initCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info("PostgreSQL storage initialized")
	return s, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS matches (
		id SERIAL PRIMARY KEY,
		match_key VARCHAR(600) NOT NULL UNIQUE,
		home_team VARCHAR(255) NOT NULL,
		away_team VARCHAR(255) NOT NULL,
		kickoff_at TIMESTAMPTZ NOT NULL,
		league VARCHAR(255) NOT NULL DEFAULT '',
		competition VARCHAR(255) NOT NULL DEFAULT '',
		scraped_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS provider_match_mappings (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		provider VARCHAR(50) NOT NULL,
		provider_match_id VARCHAR(255) NOT NULL,
		provider_url TEXT NOT NULL DEFAULT '',
		provider_event_name VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		last_updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE(provider, provider_match_id)
	);

	CREATE TABLE IF NOT EXISTS odds (
		id BIGSERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		harvest_id VARCHAR(64) NOT NULL,
		provider VARCHAR(50) NOT NULL,
		market VARCHAR(50) NOT NULL,
		price DECIMAL(10, 4) NOT NULL CHECK (price > 0),
		provider_odds_id VARCHAR(255) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		scraped_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_odds_match_market ON odds(match_id, market, scraped_at DESC);
	CREATE INDEX IF NOT EXISTS idx_matches_kickoff ON matches(kickoff_at);

	CREATE TABLE IF NOT EXISTS bet_placements (
		id BIGSERIAL PRIMARY KEY,
		provider VARCHAR(50) NOT NULL,
		provider_match_id VARCHAR(255) NOT NULL,
		provider_odds_id VARCHAR(255) NOT NULL,
		market VARCHAR(50) NOT NULL DEFAULT '',
		stake DECIMAL(12, 2) NOT NULL,
		expected_price DECIMAL(10, 4) NOT NULL,
		success BOOLEAN NOT NULL,
		provider_bet_id VARCHAR(255) NOT NULL DEFAULT '',
		accepted_stake DECIMAL(12, 2),
		accepted_price DECIMAL(10, 4),
		error_message TEXT NOT NULL DEFAULT '',
		attempted_at TIMESTAMPTZ NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreHarvest writes one harvest in a single transaction. Matches are
// upserted by canonical key, mappings by (provider, provider_match_id) and
// odds are always inserted.
func (s *PostgresSink) StoreHarvest(ctx context.Context, h models.Harvest) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := make(map[string]int64, len(h.Matches))
	for _, m := range h.Matches {
		id, err := upsertMatch(ctx, tx, m)
		if err != nil {
			return err
		}
		ids[m.Key()] = id
		for _, mp := range m.Mappings {
			if err := upsertMapping(ctx, tx, id, mp); err != nil {
				return err
			}
		}
	}

	inserted := 0
	for _, mo := range h.Odds {
		matchID, ok := ids[mo.MatchKey]
		if !ok {
			s.logger.Warn("odds for a match outside the harvest", "match_key", mo.MatchKey)
			continue
		}
		for _, o := range mo.Odds {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO odds (match_id, harvest_id, provider, market, price, provider_odds_id, description, scraped_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				matchID, h.ID, string(o.Provider), string(o.Market), o.Price, o.ProviderOddsID, o.Description, o.ScrapedAt,
			); err != nil {
				return fmt.Errorf("failed to insert odds %s: %w", o.ProviderOddsID, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit harvest: %w", err)
	}
	s.logger.Debug("harvest stored", "harvest_id", h.ID, "matches", len(ids), "odds", inserted)
	return nil
}

func upsertMatch(ctx context.Context, tx *sql.Tx, m models.Match) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO matches (match_key, home_team, away_team, kickoff_at, league, competition, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_key) DO UPDATE SET
			league = EXCLUDED.league,
			competition = EXCLUDED.competition,
			scraped_at = EXCLUDED.scraped_at
		RETURNING id`,
		m.Key(), m.HomeTeam, m.AwayTeam, m.KickoffAt, m.League, m.Competition, m.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert match %s: %w", m.Name(), err)
	}
	return id, nil
}

func upsertMapping(ctx context.Context, tx *sql.Tx, matchID int64, mp models.ProviderMatchMapping) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO provider_match_mappings
			(match_id, provider, provider_match_id, provider_url, provider_event_name, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, provider_match_id) DO UPDATE SET
			match_id = EXCLUDED.match_id,
			provider_url = EXCLUDED.provider_url,
			provider_event_name = EXCLUDED.provider_event_name,
			last_updated_at = EXCLUDED.last_updated_at`,
		matchID, string(mp.Provider), mp.ProviderMatchID, mp.ProviderURL, mp.ProviderEventName, mp.CreatedAt, mp.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping %s/%s: %w", mp.Provider, mp.ProviderMatchID, err)
	}
	return nil
}

func (s *PostgresSink) RecordBet(ctx context.Context, rec BetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bet_placements (
			provider, provider_match_id, provider_odds_id, market, stake, expected_price,
			success, provider_bet_id, accepted_stake, accepted_price, error_message, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(rec.Provider), rec.Request.ProviderMatchID, rec.Request.ProviderOddsID, string(rec.Request.Market),
		rec.Request.Stake, rec.Request.ExpectedPrice,
		rec.Result.Success, rec.Result.ProviderBetID, rec.Result.AcceptedStake, rec.Result.AcceptedPrice,
		rec.Result.ErrorMessage, rec.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record bet placement: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
