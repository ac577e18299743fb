package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	_ "modernc.org/sqlite"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite persister with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

const schema = `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		series_id TEXT NOT NULL,
		date TEXT NOT NULL,
		value REAL NOT NULL,
		embedding TEXT,
		embedding_key TEXT,
		UNIQUE (series_id, date)
	)
`

type sqlitePersister struct {
	options persister.Options
	conn    *sql.DB
}

func (p *sqlitePersister) ReplaceSeries(ctx context.Context, seriesId string, observations []observation.Observation) (int, error) {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE series_id = ?`, seriesId); err != nil {
		return 0, fmt.Errorf("delete series %s: %w", seriesId, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO observations (series_id, date, value) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, o := range observations {
		if _, err := stmt.ExecContext(ctx, seriesId, o.Day(), o.Value); err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", seriesId, o.Day(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(observations), nil
}

func (p *sqlitePersister) List(ctx context.Context) ([]observation.Observation, error) {
	return p.query(ctx, `SELECT id, series_id, date, value, embedding, embedding_key FROM observations ORDER BY series_id, date`)
}

func (p *sqlitePersister) ListSeries(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	return p.query(ctx, `SELECT id, series_id, date, value, embedding, embedding_key FROM observations WHERE series_id = ? ORDER BY date`, seriesId)
}

func (p *sqlitePersister) SetEmbedding(ctx context.Context, id string, vector []float32, key string) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}

	rsp, err := p.conn.ExecContext(ctx, `UPDATE observations SET embedding = ?, embedding_key = ? WHERE id = ?`, string(data), key, id)
	if err != nil {
		return err
	}

	n, err := rsp.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("observation %s not found", id)
	}

	return nil
}

func (p *sqlitePersister) query(ctx context.Context, query string, args ...any) ([]observation.Observation, error) {
	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []observation.Observation{}

	for rows.Next() {
		var (
			id        int64
			o         observation.Observation
			date      string
			embedding sql.NullString
			key       sql.NullString
		)

		if err := rows.Scan(&id, &o.SeriesId, &date, &o.Value, &embedding, &key); err != nil {
			return nil, err
		}

		o.ID = strconv.FormatInt(id, 10)

		o.Date, err = observation.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("observation %d date %q: %w", id, date, err)
		}

		if embedding.Valid && len(embedding.String) > 0 {
			if err := json.Unmarshal([]byte(embedding.String), &o.Embedding); err != nil {
				o.Embedding = nil
			}
		}

		o.EmbeddingKey = key.String

		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func NewPersister(opts ...persister.Option) persister.Persister {
	options := persister.NewOptions(opts...)

	p := &sqlitePersister{
		options: options,
	}

	// file:fred.db?_pragma=busy_timeout(5000)
	conn, err := sql.Open(DRIVER, p.options.Location)
	if err != nil {
		detail := "failed to open sqlite persister"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	conn.SetMaxOpenConns(1)

	if err := otelsql.RecordStats(conn); err != nil {
		detail := "failed to initialize sqlite instrumentation for sqlite persister"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if _, err := conn.ExecContext(options.Context, schema); err != nil {
		detail := "failed to create observations table for sqlite persister"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	p.conn = conn

	return p
}
