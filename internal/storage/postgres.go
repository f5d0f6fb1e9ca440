package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/model"
)

// Postgres is the row store, optimized for point lookups and time-window
// queries.
type Postgres struct {
	db     *sql.DB
	logger zerolog.Logger
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewPostgres opens a connection and ensures the schema exists.
func NewPostgres(params ConnectionParams) (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Postgres{
		db:     db,
		logger: log.With().Str("component", "postgres").Logger(),
	}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS price_points (
			symbol TEXT NOT NULL,
			exchange TEXT NOT NULL,
			ts BIGINT NOT NULL,
			open DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION NOT NULL,
			low DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, exchange, ts)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			ts BIGINT NOT NULL,
			trend TEXT NOT NULL,
			pattern TEXT,
			narrative TEXT,
			agent_id TEXT NOT NULL,
			indicators JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			action TEXT NOT NULL,
			symbol TEXT NOT NULL,
			strength DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			reasoning TEXT,
			ts BIGINT NOT NULL,
			metadata JSONB
		)
	`)
	return err
}

// InsertPricePoint upserts one OHLCV bar.
func (p *Postgres) InsertPricePoint(ctx context.Context, point model.PricePoint) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO price_points (symbol, exchange, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, exchange, ts) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`, point.Symbol, point.Exchange, point.Timestamp, point.Open, point.High, point.Low, point.Close, point.Volume)
	if err != nil {
		return fmt.Errorf("inserting price point: %w", err)
	}
	return nil
}

// InsertAnalysis stores one analysis record.
func (p *Postgres) InsertAnalysis(ctx context.Context, a model.Analysis) error {
	indicators, err := json.Marshal(a.Indicators)
	if err != nil {
		return fmt.Errorf("marshaling indicators: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO analyses (id, symbol, ts, trend, pattern, narrative, agent_id, indicators)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.Symbol, a.Timestamp, a.Trend, a.Pattern, a.Narrative, a.AgentID, indicators)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// InsertSignal stores one signal record.
func (p *Postgres) InsertSignal(ctx context.Context, s model.Signal) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling signal metadata: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO signals (id, agent_id, action, symbol, strength, confidence, reasoning, ts, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.AgentID, s.Action, s.Symbol, s.Strength, s.Confidence, s.Reasoning, s.Timestamp, metadata)
	if err != nil {
		return fmt.Errorf("inserting signal: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
