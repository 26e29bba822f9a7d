package verification

import (
	"HerbPass/domain"
	"HerbPass/internal/testutil"
	"HerbPass/internal/utils/locator"
	"HerbPass/internal/utils/storage"
	"HerbPass/pkg/batch"
	"HerbPass/pkg/ledger"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type chain struct {
	batches batch.BatchService
	ledger  ledger.LedgerService
	service VerificationService
}

func newChain(t *testing.T, db *gorm.DB) chain {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	clock := testutil.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	return chain{
		batches: batch.NewBatchService(batch.NewBatchRepository(db), store, locator.NewCodec(locator.DefaultOptions()),
			batch.Options{BaseURL: "http://localhost:5000", Clock: clock}),
		ledger:  ledger.NewLedgerService(ledger.NewLedgerRepository(db), store, ledger.Options{Clock: clock}),
		service: NewVerificationService(NewVerificationRepository(db), nil),
	}
}

func TestGetBatchViewFullChain(t *testing.T) {
	ctx := context.Background()
	c := newChain(t, testutil.NewSQLiteDB(t))

	created, err := c.batches.CreateBatch(ctx, domain.CreateBatchRequest{HerbName: "Ashwagandha", FarmerName: "Ravi"}, nil)
	require.NoError(t, err)

	report := []byte("%PDF-1.4 withanolides 2.5%")
	lab, err := c.ledger.AppendLabReport(ctx, created.ID, domain.Upload{Filename: "assay.pdf", Data: report})
	require.NoError(t, err)
	_, err = c.ledger.AppendStatus(ctx, created.ID, "Shipped")
	require.NoError(t, err)
	_, err = c.ledger.AppendStatus(ctx, created.ID, "Delivered")
	require.NoError(t, err)

	view, found, err := c.service.GetBatchView(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, created.BatchCode, view.Batch.BatchCode)
	assert.Equal(t, "Ashwagandha", view.Batch.HerbName)
	assert.Equal(t, created.LocatorRef, view.Batch.LocatorRef)

	require.Len(t, view.LabReports, 1)
	sum := sha256.Sum256(report)
	assert.Equal(t, hex.EncodeToString(sum[:]), view.LabReports[0].SHA256Hash)
	assert.Equal(t, lab.ID, view.LabReports[0].ID)

	require.Len(t, view.StatusEvents, 2)
	assert.Equal(t, "Shipped", view.StatusEvents[0].Status)
	assert.Equal(t, "Delivered", view.StatusEvents[1].Status)
	require.NotNil(t, view.CurrentStatus)
	assert.Equal(t, "Delivered", view.CurrentStatus.Status)
}

func TestGetBatchViewWithoutEvents(t *testing.T) {
	ctx := context.Background()
	c := newChain(t, testutil.NewSQLiteDB(t))

	created, err := c.batches.CreateBatch(ctx, domain.CreateBatchRequest{HerbName: "Tulsi"}, nil)
	require.NoError(t, err)

	view, found, err := c.service.GetBatchView(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, view.LabReports)
	assert.NotNil(t, view.LabReports)
	assert.Empty(t, view.StatusEvents)
	assert.Nil(t, view.CurrentStatus)
}

func TestGetBatchViewNotFound(t *testing.T) {
	c := newChain(t, testutil.NewSQLiteDB(t))

	_, found, err := c.service.GetBatchView(context.Background(), 41)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetBatchViewByCode(t *testing.T) {
	ctx := context.Background()
	c := newChain(t, testutil.NewSQLiteDB(t))

	created, err := c.batches.CreateBatch(ctx, domain.CreateBatchRequest{HerbName: "Brahmi"}, nil)
	require.NoError(t, err)

	view, found, err := c.service.GetBatchViewByCode(ctx, " "+strings.ToLower(created.BatchCode)+" ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, view.Batch.ID)

	_, found, err = c.service.GetBatchViewByCode(ctx, "HB-FFFFFFFFFF")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = c.service.GetBatchViewByCode(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
