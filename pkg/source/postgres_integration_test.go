//go:build integration
// +build integration

package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres starts a PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "proposals_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/proposals_test?sslmode=disable", host, port.Port())
}

func TestPostgresSource(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	var (
		src *SQLSource
		err error
	)
	for i := 0; i < 30; i++ {
		src, err = OpenSQL(ctx, DialectPostgres, dsn, true)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	defer src.Close()

	expected := sampleDocument("acme-2024")
	require.NoError(t, src.Import(ctx, expected))

	doc, err := src.GetDocument(ctx, "acme-2024")
	require.NoError(t, err)
	assert.Equal(t, expected, doc)

	summaries, err := src.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme-2024"}, []string{summaries[0].Name})

	_, err = src.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
