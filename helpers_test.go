package recordstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// stepClock advances by step on every read so each operation gets a
// distinct, predictable timestamp.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Last returns the most recent timestamp handed out.
func (c *stepClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type car struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

func newTestRepository(t *testing.T, opts ...RepositoryOption) (*Repository, *stepClock) {
	t.Helper()

	db, err := ConnectSqlite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := newStepClock()
	repo, err := CreateSqliteRepository(db, append([]RepositoryOption{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, repo.Schema().Init(context.Background()))

	return repo, clock
}

func tenantCtx(tenant uuid.UUID) context.Context {
	return WithTenant(context.Background(), tenant)
}

func identityCtx(tenant, user uuid.UUID) context.Context {
	return WithIdentity(context.Background(), Identity{TenantID: &tenant, UserID: &user})
}

func insertCar(t *testing.T, ctx context.Context, repo *Repository, c car) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, repo.Insert(ctx, InsertRequest{ID: id, Type: "car", Data: c}))
	return id
}

func ids[T any](recs []Record[T]) []uuid.UUID {
	return Map(recs, func(r Record[T]) uuid.UUID { return r.ID })
}

// testDB returns the connection a test repository was built on.
func testDB(repo *Repository) *sqlx.DB {
	return repo.exec.(*sqlxExecutor).db.(*sqlx.DB)
}
