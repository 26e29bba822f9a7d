package verification

import (
	"HerbPass/entities"
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type (
	VerificationRepository interface {
		GetBatchByID(ctx context.Context, id uint) (*entities.Batch, error)
		GetBatchByCode(ctx context.Context, code string) (*entities.Batch, error)
		ListLabReports(ctx context.Context, batchID uint) ([]entities.LabReport, error)
		ListPharmaStatuses(ctx context.Context, batchID uint) ([]entities.PharmaStatus, error)

		// Snapshot runs fn inside one read-only transaction so every read
		// observes the same committed state.
		Snapshot(ctx context.Context, fn func(repo VerificationRepository) error) error
	}

	verificationRepository struct {
		db *gorm.DB
	}
)

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) GetBatchByID(ctx context.Context, id uint) (*entities.Batch, error) {
	var batch entities.Batch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *verificationRepository) GetBatchByCode(ctx context.Context, code string) (*entities.Batch, error) {
	var batch entities.Batch
	if err := r.db.WithContext(ctx).Where("batch_code = ?", code).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *verificationRepository) ListLabReports(ctx context.Context, batchID uint) ([]entities.LabReport, error) {
	var reports []entities.LabReport
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("uploaded_at ASC").
		Order("id ASC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *verificationRepository) ListPharmaStatuses(ctx context.Context, batchID uint) ([]entities.PharmaStatus, error) {
	var statuses []entities.PharmaStatus
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("updated_at ASC").
		Order("id ASC").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *verificationRepository) Snapshot(ctx context.Context, fn func(repo VerificationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&verificationRepository{db: tx})
	}, snapshotOptions(r.db))
}

// snapshotOptions asks PostgreSQL for a read-only REPEATABLE READ snapshot.
// SQLite serialises writers already and rejects isolation levels it does not
// know, so it gets the driver default.
func snapshotOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector == nil || db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
