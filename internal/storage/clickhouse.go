package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/model"
)

// ClickHouse is the columnar store, optimized for append-heavy analytical
// scans over the same three record kinds the row store holds.
type ClickHouse struct {
	conn   driver.Conn
	logger zerolog.Logger
}

// ClickHouseParams holds ClickHouse connection parameters.
type ClickHouseParams struct {
	Addr     string
	Database string
	User     string
	Password string
}

// NewClickHouse opens a connection and ensures the schema exists.
func NewClickHouse(ctx context.Context, params ClickHouseParams) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{params.Addr},
		Auth: clickhouse.Auth{
			Database: params.Database,
			Username: params.User,
			Password: params.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	ch := &ClickHouse{
		conn:   conn,
		logger: log.With().Str("component", "clickhouse").Logger(),
	}
	if err := ch.createTables(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *ClickHouse) createTables(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			symbol String,
			exchange String,
			ts Int64,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64
		) ENGINE = MergeTree ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id String,
			symbol String,
			ts Int64,
			trend String,
			pattern String,
			narrative String,
			agent_id String,
			indicators String
		) ENGINE = MergeTree ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id String,
			agent_id String,
			action String,
			symbol String,
			strength Float64,
			confidence Float64,
			reasoning String,
			ts Int64,
			metadata String
		) ENGINE = MergeTree ORDER BY (symbol, ts)`,
	}

	for _, q := range ddl {
		if err := c.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("creating clickhouse table: %w", err)
		}
	}
	return nil
}

// InsertPricePoint appends one OHLCV bar.
func (c *ClickHouse) InsertPricePoint(ctx context.Context, p model.PricePoint) error {
	err := c.conn.Exec(ctx, `
		INSERT INTO price_points (symbol, exchange, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Symbol, p.Exchange, p.Timestamp, p.Open, p.High, p.Low, p.Close, p.Volume)
	if err != nil {
		return fmt.Errorf("inserting price point: %w", err)
	}
	return nil
}

// InsertAnalysis appends one analysis record.
func (c *ClickHouse) InsertAnalysis(ctx context.Context, a model.Analysis) error {
	indicators, err := json.Marshal(a.Indicators)
	if err != nil {
		return fmt.Errorf("marshaling indicators: %w", err)
	}

	err = c.conn.Exec(ctx, `
		INSERT INTO analyses (id, symbol, ts, trend, pattern, narrative, agent_id, indicators)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Symbol, a.Timestamp, string(a.Trend), a.Pattern, a.Narrative, a.AgentID, string(indicators))
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// InsertSignal appends one signal record.
func (c *ClickHouse) InsertSignal(ctx context.Context, s model.Signal) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling signal metadata: %w", err)
	}

	err = c.conn.Exec(ctx, `
		INSERT INTO signals (id, agent_id, action, symbol, strength, confidence, reasoning, ts, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.AgentID, string(s.Action), s.Symbol, s.Strength, s.Confidence, s.Reasoning, s.Timestamp, string(metadata))
	if err != nil {
		return fmt.Errorf("inserting signal: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *ClickHouse) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the connection.
func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
