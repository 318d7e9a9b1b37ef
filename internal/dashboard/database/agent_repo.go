package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/perfscope/perfscope/internal/dashboard/model"
	"github.com/rs/zerolog/log"
)

// AgentRepo reads monitoring-agent registrations and their linked CIs.
type AgentRepo struct {
	db *sql.DB
}

// NewAgentRepo creates the agent repository.
func NewAgentRepo(db *Database) *AgentRepo {
	return &AgentRepo{db: db.GetDB()}
}

// minActiveChecks excludes agents that have not warmed up yet.
const minActiveChecks = 3

// FindActiveAgents returns active, collection-enabled agents joined with
// their linked CI record in a single query. Rows whose CI name or class
// cannot be resolved are skipped. A non-empty ciSysIDs restricts the set;
// limit caps the result count.
func (r *AgentRepo) FindActiveAgents(ctx context.Context, ciSysIDs []string, limit int) ([]model.MonitoredEntity, error) {
	query := `
		SELECT a.sys_id, a.ci_sys_id, ci.name, ci.sys_class_name,
		       ci.support_group, ci.location, ci.ip_address
		FROM itom_agents a
		JOIN cmdb_ci ci ON ci.sys_id = a.ci_sys_id
		WHERE a.status = 'active'
		  AND a.data_collection = 'enabled'
		  AND a.active_checks >= $1`
	args := []any{minActiveChecks}

	if len(ciSysIDs) > 0 {
		query += fmt.Sprintf(" AND a.ci_sys_id = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(ciSysIDs))
	}
	query += " ORDER BY a.sys_id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var entities []model.MonitoredEntity
	for rows.Next() {
		var e model.MonitoredEntity
		var name, class, supportGroup, location, ipAddress sql.NullString
		if err := rows.Scan(&e.ID, &e.CISysID, &name, &class, &supportGroup, &location, &ipAddress); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		// an agent whose linked CI is incomplete is silently dropped
		if !name.Valid || name.String == "" || !class.Valid || class.String == "" {
			log.Debug().Str("agent", e.ID).Msg("skipping agent with unresolved CI")
			continue
		}
		e.DisplayName = name.String
		e.EntityClass = class.String
		e.SupportGroup = orNA(supportGroup)
		e.Location = orNA(location)
		e.IPAddress = orNA(ipAddress)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}

	return entities, nil
}

// FindResources batch-resolves sub-resources for all given agents in one
// query, capped per agent. Returned map is keyed by agent id.
func (r *AgentRepo) FindResources(ctx context.Context, agentIDs []string) (map[string][]model.SubResource, error) {
	out := make(map[string][]model.SubResource, len(agentIDs))
	if len(agentIDs) == 0 {
		return out, nil
	}

	const query = `
		SELECT agent_sys_id, sys_id, name, type
		FROM itom_agent_resources
		WHERE agent_sys_id = ANY($1)
		ORDER BY agent_sys_id, name`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(agentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query agent resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agentID string
		var res model.SubResource
		if err := rows.Scan(&agentID, &res.ID, &res.Name, &res.Type); err != nil {
			return nil, fmt.Errorf("failed to scan agent resource: %w", err)
		}
		if len(out[agentID]) >= model.MaxResourcesPerCI {
			continue
		}
		out[agentID] = append(out[agentID], res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent resources: %w", err)
	}

	return out, nil
}

func orNA(s sql.NullString) string {
	if s.Valid && s.String != "" {
		return s.String
	}
	return "N/A"
}
