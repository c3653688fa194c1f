package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	pkgch "OscLens/pkg/clickhouse"
	applogger "OscLens/pkg/logger"
)

// CHSeriesStore implements SeriesStore backed by ClickHouse. One wide table
// holds every daily series keyed by source name; values are nullable so
// missing observations survive storage round-trips.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: "osclens.series_daily"}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            source LowCardinality(String),
            ts     DateTime64(3, 'UTC'),
            value  Nullable(Float64)
        )
        ENGINE = ReplacingMergeTree
        ORDER BY (source, ts)
    `, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("init series table: %w", err)
	}
	return s.Health(ctx)
}

func (s *CHSeriesStore) Fetch(ctx context.Context, source string, from, to time.Time) (models.Series, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, value
        FROM %s FINAL
        WHERE source = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, source, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse fetch_series query error",
				applogger.String("source", source),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("fetch series %s: %w", source, err)
	}
	defer rows.Close()

	out := make(models.Series, 0, 1024)
	for rows.Next() {
		var ts time.Time
		var v sql.NullFloat64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		p := models.Point{TS: ts.UnixMilli()}
		if v.Valid {
			p.Value = models.V(v.Float64)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse fetch_series ok",
			applogger.String("source", source),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSeriesStore) StoreBatch(ctx context.Context, source string, points models.Series) error {
	if len(points) == 0 {
		return nil
	}
	// Chunked multi-row VALUES inserts to limit round-trips.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, p := range points[start:end] {
			values = append(values, "(?, ?, ?)")
			var v interface{}
			if p.Value != nil {
				v = *p.Value
			}
			args = append(args, source, time.UnixMilli(p.TS).UTC(), v)
		}
		q := fmt.Sprintf("INSERT INTO %s (source, ts, value) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store series %s: %w", source, err)
		}
	}
	return nil
}

func (s *CHSeriesStore) LatestTS(ctx context.Context, source string) (int64, error) {
	q := fmt.Sprintf("SELECT max(ts) FROM %s WHERE source = ?", s.table)
	var ts time.Time
	if err := s.db.QueryRowContext(ctx, q, source).Scan(&ts); err != nil {
		return 0, fmt.Errorf("latest ts %s: %w", source, err)
	}
	if ts.IsZero() {
		return 0, nil
	}
	return ts.UnixMilli(), nil
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSeriesStore) Close() error {
	return nil // Managed by pkg
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
