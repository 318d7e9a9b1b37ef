package alertstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads alert and anomaly records from the event-management store.
// It is a separate collaborator from the CMDB database and keeps its own
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the alert store.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping alert store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Row is one raw alert or anomaly record. AdditionalInfo carries the
// free-form JSON side-channel verbatim; parsing happens in the service.
type Row struct {
	Number         string
	Severity       int
	State          string
	Description    string
	MetricName     string
	Resource       string
	Source         string
	CISysID        string
	CIName         string
	ParentID       string
	AdditionalInfo string
	CreatedAt      time.Time
}

const alertColumns = `number, severity, state, COALESCE(description, ''),
	COALESCE(metric_name, ''), COALESCE(resource, ''), COALESCE(source, ''),
	ci_sys_id, COALESCE(ci_name, ''), COALESCE(parent_id, ''),
	COALESCE(additional_info, ''), sys_created_on`

// QueryAlerts returns alerts for the CI set created inside [start, end),
// newest first, capped at limit.
func (s *Store) QueryAlerts(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]Row, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM em_alert
		WHERE ci_sys_id = ANY($1)
		  AND sys_created_on >= $2 AND sys_created_on < $3
		ORDER BY sys_created_on DESC
		LIMIT $4`, alertColumns)
	return s.queryRows(ctx, query, ciSysIDs, start, end, limit)
}

// QueryAnomalies returns anomaly records with the same filter shape.
func (s *Store) QueryAnomalies(ctx context.Context, ciSysIDs []string, start, end time.Time, limit int) ([]Row, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM em_alert_anomaly
		WHERE ci_sys_id = ANY($1)
		  AND sys_created_on >= $2 AND sys_created_on < $3
		ORDER BY sys_created_on DESC
		LIMIT $4`, alertColumns)
	return s.queryRows(ctx, query, ciSysIDs, start, end, limit)
}

func (s *Store) queryRows(ctx context.Context, query string, ciSysIDs []string, start, end time.Time, limit int) ([]Row, error) {
	rows, err := s.pool.Query(ctx, query, ciSysIDs, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert store: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Number, &r.Severity, &r.State, &r.Description,
			&r.MetricName, &r.Resource, &r.Source, &r.CISysID, &r.CIName,
			&r.ParentID, &r.AdditionalInfo, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return out, nil
}

// ResolveParentNumbers batch-resolves parent alert sys_ids to their
// human-readable numbers in one query.
func (s *Store) ResolveParentNumbers(ctx context.Context, parentIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}

	const query = `SELECT sys_id, number FROM em_alert WHERE sys_id = ANY($1)`
	rows, err := s.pool.Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parent alerts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sysID, number string
		if err := rows.Scan(&sysID, &number); err != nil {
			return nil, fmt.Errorf("failed to scan parent alert: %w", err)
		}
		out[sysID] = number
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent alerts: %w", err)
	}

	return out, nil
}
