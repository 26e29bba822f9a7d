package ledger

import (
	"HerbPass/entities"
	"context"

	"gorm.io/gorm"
)

type (
	// LedgerRepository only inserts and reads; ledger rows are never updated
	// or deleted.
	LedgerRepository interface {
		// FindBatchCode returns gorm.ErrRecordNotFound for unknown batches.
		FindBatchCode(ctx context.Context, batchID uint) (string, error)

		CreateLabReport(ctx context.Context, report *entities.LabReport) error
		GetLabReportByID(ctx context.Context, id uint) (*entities.LabReport, error)

		CreatePharmaStatus(ctx context.Context, status *entities.PharmaStatus) error
		GetLatestPharmaStatus(ctx context.Context, batchID uint) (*entities.PharmaStatus, error)

		Transaction(ctx context.Context, fn func(repo LedgerRepository) error) error
	}

	ledgerRepository struct {
		db *gorm.DB
	}
)

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindBatchCode(ctx context.Context, batchID uint) (string, error) {
	var batch entities.Batch
	if err := r.db.WithContext(ctx).
		Select("id", "batch_code").
		Where("id = ?", batchID).
		First(&batch).Error; err != nil {
		return "", err
	}
	return batch.Code, nil
}

func (r *ledgerRepository) CreateLabReport(ctx context.Context, report *entities.LabReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ledgerRepository) GetLabReportByID(ctx context.Context, id uint) (*entities.LabReport, error) {
	var report entities.LabReport
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ledgerRepository) CreatePharmaStatus(ctx context.Context, status *entities.PharmaStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

// GetLatestPharmaStatus is the current status of a batch: the event with the
// latest updated_at, ties broken by insertion order.
func (r *ledgerRepository) GetLatestPharmaStatus(ctx context.Context, batchID uint) (*entities.PharmaStatus, error) {
	var status entities.PharmaStatus
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("updated_at DESC").
		Order("id DESC").
		First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *ledgerRepository) Transaction(ctx context.Context, fn func(repo LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
