package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// MetricRepo reads dashboard metric metadata: which source metric types each
// CI class exposes and the static metricType -> tiny internal name table.
type MetricRepo struct {
	db *sql.DB
}

// NewMetricRepo creates the metric metadata repository.
func NewMetricRepo(db *Database) *MetricRepo {
	return &MetricRepo{db: db.GetDB()}
}

// DashboardMeta is one dashboard-metadata row: a comma-separated list of
// source-metric-type references plus the category label they belong to.
type DashboardMeta struct {
	MetricTypes string
	Category    string
}

// SourceMetricType is a resolved source-metric-type record.
type SourceMetricType struct {
	SysID        string
	InternalType string
	DisplayName  string
	Unit         string
}

// FindDashboardMeta returns active dashboard-metadata records for the ITOM
// telemetry source matching the CI class. A non-empty category narrows by
// substring on the category title.
func (r *MetricRepo) FindDashboardMeta(ctx context.Context, ciClass, category string) ([]DashboardMeta, error) {
	query := `
		SELECT metric_types, category
		FROM dashboard_metric_meta
		WHERE source = 'itom'
		  AND cmdb_ci_type = $1
		  AND active = true`
	args := []any{ciClass}

	if category != "" {
		query += " AND category ILIKE '%' || $2 || '%'"
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard meta: %w", err)
	}
	defer rows.Close()

	var metas []DashboardMeta
	for rows.Next() {
		var m DashboardMeta
		if err := rows.Scan(&m.MetricTypes, &m.Category); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard meta: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dashboard meta: %w", err)
	}

	return metas, nil
}

// ResolveMetricTypes batch-resolves source-metric-type references in a
// single query.
func (r *MetricRepo) ResolveMetricTypes(ctx context.Context, sysIDs []string) ([]SourceMetricType, error) {
	if len(sysIDs) == 0 {
		return nil, nil
	}

	const query = `
		SELECT sys_id, internal_type, display_name, COALESCE(unit, '')
		FROM source_metric_types
		WHERE sys_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(sysIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve metric types: %w", err)
	}
	defer rows.Close()

	var types []SourceMetricType
	for rows.Next() {
		var t SourceMetricType
		if err := rows.Scan(&t.SysID, &t.InternalType, &t.DisplayName, &t.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan metric type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric types: %w", err)
	}

	return types, nil
}

// LoadNameMap loads the full metricType -> tiny internal name table. The
// table is assumed static for the process lifetime; callers cache it.
func (r *MetricRepo) LoadNameMap(ctx context.Context) (map[string]string, error) {
	const query = `SELECT metric_type, tiny_name FROM metric_type_names`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric name map: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var metricType, tinyName string
		if err := rows.Scan(&metricType, &tinyName); err != nil {
			return nil, fmt.Errorf("failed to scan metric name: %w", err)
		}
		names[metricType] = tinyName
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric names: %w", err)
	}

	return names, nil
}
