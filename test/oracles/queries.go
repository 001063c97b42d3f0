package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_single_active_step",
			SQL: `SELECT sale_id, COUNT(*) FROM sale_steps
                  WHERE status = 'in_progress'
                  GROUP BY sale_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_cursor_points_at_active_step",
			SQL: `SELECT st.sale_id, st.slug, st.position, s.current_step_index
                  FROM sale_steps st
                  JOIN sales s ON s.id = st.sale_id
                  WHERE st.status = 'in_progress' AND st.position <> s.current_step_index`,
		},
		{
			Name: "O3_steps_behind_cursor_terminal",
			SQL: `SELECT st.sale_id, st.slug, st.status
                  FROM sale_steps st
                  JOIN sales s ON s.id = st.sale_id
                  WHERE st.position < s.current_step_index
                    AND st.status NOT IN ('completed', 'skipped')`,
		},
		{
			Name: "O4_completed_sale_all_terminal",
			SQL: `SELECT st.sale_id, st.slug, st.status
                  FROM sale_steps st
                  JOIN sales s ON s.id = st.sale_id
                  WHERE s.status = 'completed'
                    AND st.status NOT IN ('completed', 'skipped')`,
		},
		{
			Name: "O5_rgi_single_current_entry",
			SQL: `SELECT sale_id, step_slug, COUNT(*) FROM sale_rgi_history
                  WHERE status = 'current'
                  GROUP BY sale_id, step_slug HAVING COUNT(*) > 1`,
		},
		{
			Name: "O6_rgi_seq_contiguous",
			SQL: `WITH seqs AS (
                      SELECT sale_id, step_slug, seq,
                             LAG(seq) OVER (PARTITION BY sale_id, step_slug ORDER BY seq) AS prev
                      FROM sale_rgi_history)
                  SELECT * FROM seqs WHERE prev IS NOT NULL AND seq <> prev + 1`,
		},
		{
			Name: "O7_rgi_history_requires_protocol",
			SQL: `SELECT h.sale_id, h.step_slug FROM sale_rgi_history h
                  JOIN sale_steps st ON st.sale_id = h.sale_id AND st.slug = h.step_slug
                  WHERE st.rgi_protocol IS NULL OR st.rgi_protocol = ''`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
