//go:build integration

package verification

import (
	migration "HerbPass/cmd/database/migrate"
	"HerbPass/domain"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("herbpass"),
		postgres.WithUsername("herbpass"),
		postgres.WithPassword("herbpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Migrate(db))
	return db
}

func TestPostgresProvenanceChain(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	c := newChain(t, db)

	created, err := c.batches.CreateBatch(ctx, domain.CreateBatchRequest{HerbName: "Ashwagandha"}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ledger.AppendStatus(ctx, created.ID, "Shipped")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err = c.ledger.AppendLabReport(ctx, created.ID, domain.Upload{Filename: "assay.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	last, err := c.ledger.AppendStatus(ctx, created.ID, "Delivered")
	require.NoError(t, err)

	view, found, err := c.service.GetBatchView(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, view.LabReports, 1)
	assert.Len(t, view.StatusEvents, 9)
	require.NotNil(t, view.CurrentStatus)
	assert.Equal(t, last.ID, view.CurrentStatus.ID)

	_, err = c.ledger.AppendStatus(ctx, created.ID+100, "Shipped")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)

	_, found, err = c.service.GetBatchView(ctx, created.ID+100)
	require.NoError(t, err)
	assert.False(t, found)
}
