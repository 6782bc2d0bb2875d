package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

// startPostgres runs a throwaway Postgres container. Tests skip when no
// container runtime is available.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "counterteams",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://test:test@%s/counterteams?sslmode=disable", endpoint))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestCollectionRepo(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := NewCollectionRepo(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation is idempotent")
	require.NoError(t, repo.Ping(ctx))

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c)

	first := entity.Collection{"giovanni": {Title: "Giovanni Counters", LastUpdated: "2024-03-15T10:30:00Z"}}
	require.NoError(t, repo.Save(ctx, first))
	second := entity.Collection{"giovanni": {Title: "Giovanni Counters v2", LastUpdated: "2024-03-16T10:30:00Z"}}
	require.NoError(t, repo.Save(ctx, second))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Giovanni Counters v2", loaded["giovanni"].Title)

	_, err = pool.Exec(ctx, `UPDATE counter_collections SET document = $1 WHERE name = $2`, []byte("{broken"), defaultCollectionName)
	require.NoError(t, err)
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrCorruptCollection)
}
