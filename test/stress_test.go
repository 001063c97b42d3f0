package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"vendaflow/sale"
	"vendaflow/storage"
	"vendaflow/test/actors"
	"vendaflow/test/chaos"
	"vendaflow/test/infra"
	"vendaflow/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 90*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 8, "number of concurrent actors")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

func TestSaleProcessConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress run in short mode")
	}

	flag.Parse()
	seed := *flSeed
	t.Logf("stress seed=%d", seed)

	var (
		pgC *infra.PGContainer
		dsn string
		err error
	)
	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	switch {
	case *flDSN != "":
		dsn = *flDSN
		pgC = &infra.PGContainer{}
	case os.Getenv("TEST_PG_DSN") != "":
		dsn = os.Getenv("TEST_PG_DSN")
		pgC = &infra.PGContainer{}
	default:
		if dockerAvailable(ctx) {
			pgC, dsn, err = infra.StartPostgres16(ctx, "")
			if err != nil {
				t.Fatalf("start postgres: %v", err)
			}
		} else {
			dsn, err = infra.InitLocalDatabase(ctx)
			if err != nil {
				t.Fatalf("init local database: %v", err)
			}
			pgC = &infra.PGContainer{}
		}
	}
	defer pgC.Terminate(context.Background())

	pool, err := infra.ApplyMigrations(ctx, dsn)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()

	store := storage.NewDiskStore(t.TempDir(), "/uploads")
	svc := sale.NewService(pool, sale.NewRepository(pool), store)

	saleID := mustSeedSale(t, ctx, pool, svc)

	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	for i := 0; i < *flConcurrency; i++ {
		g.Go(func() error { return actors.Completer(ctx2, svc, saleID, stop) })
		g.Go(func() error { return actors.Toggler(ctx2, svc, saleID, stop) })
	}
	g.Go(func() error { return actors.Uploader(ctx2, svc, saleID, stop) })
	g.Go(func() error { return actors.RGIOperator(ctx2, svc, saleID, "rgi", stop) })
	g.Go(func() error { return actors.Reader(ctx2, svc, saleID, stop) })

	// Backend-killing chaos is opt-in: connection loss surfaces as plain
	// driver errors the actors do not distinguish from real failures.
	if os.Getenv("CHAOS") == "1" {
		go chaos.TerminateRandomBackend(ctx2, pool, stop)
	}

	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			name, row, err := oracles.Run(ctx2, pool)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					break loop
				}
				t.Fatalf("oracle error: %v", err)
			}
			if name != "" {
				failed = true
				dumpRecent(t, ctx2, pool)
				t.Fatalf("Oracle %s failed. First row: %s (seed=%d)", name, row, seed)
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v", err)
		}
	}
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

func mustSeedSale(t *testing.T, ctx context.Context, pool *pgxpool.Pool, svc *sale.Service) string {
	t.Helper()

	var propertyID string
	err := pool.QueryRow(ctx, `
		INSERT INTO properties (code, title, type, city, state, price)
		VALUES ($1, 'Casa de Teste', 'casa', 'Niterói', 'RJ', 45000000)
		RETURNING id
	`, fmt.Sprintf("VF-%d", rand.Int63())).Scan(&propertyID)
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}

	p, err := svc.Create(ctx, sale.CreateParams{
		PropertyID:  propertyID,
		Buyer:       sale.Party{Name: "Comprador Stress"},
		Seller:      sale.Party{Name: "Vendedor Stress"},
		OfferAmount: 45000000,
		PaymentType: sale.PaymentFinanced,
	})
	if err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return p.ID
}

func dumpRecent(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	type dump struct {
		name string
		sql  string
	}
	dumps := []dump{
		{"sales", `SELECT id, current_step_index, status, updated_at FROM sales ORDER BY updated_at DESC LIMIT 20`},
		{"sale_steps", `SELECT sale_id, slug, position, status FROM sale_steps ORDER BY sale_id, position LIMIT 50`},
		{"sale_checklist_items", `SELECT sale_id, step_slug, slug, status FROM sale_checklist_items ORDER BY sale_id, step_slug, position LIMIT 50`},
		{"sale_rgi_history", `SELECT sale_id, step_slug, seq, status, label FROM sale_rgi_history ORDER BY sale_id, seq DESC LIMIT 50`},
	}
	for _, d := range dumps {
		rows, err := pool.Query(ctx, d.sql)
		if err != nil {
			t.Logf("dump %s error: %v", d.name, err)
			continue
		}
		cols := rows.FieldDescriptions()
		t.Logf("-- %s --", d.name)
		for rows.Next() {
			vals, _ := rows.Values()
			buf := make([]any, 0, len(vals))
			for i := range vals {
				buf = append(buf, fmt.Sprintf("%s=%v", string(cols[i].Name), vals[i]))
			}
			t.Logf("%s", buf)
		}
		rows.Close()
	}
}
