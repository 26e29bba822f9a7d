package batch

import (
	"HerbPass/entities"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgErrUniqueViolation = "23505"

var errLocatorAlreadySet = errors.New("locator already set")

type (
	BatchRepository interface {
		CreateBatch(ctx context.Context, batch *entities.Batch) error
		// SetLocatorRef backfills locator_ref; it never overwrites a set value.
		SetLocatorRef(ctx context.Context, id uint, ref string) error
		GetBatchByID(ctx context.Context, id uint) (*entities.Batch, error)
		GetBatchByCode(ctx context.Context, code string) (*entities.Batch, error)

		// Transaction runs fn against a repository bound to one transaction.
		Transaction(ctx context.Context, fn func(repo BatchRepository) error) error
	}

	batchRepository struct {
		db *gorm.DB
	}
)

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) CreateBatch(ctx context.Context, batch *entities.Batch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *batchRepository) SetLocatorRef(ctx context.Context, id uint, ref string) error {
	res := r.db.WithContext(ctx).Model(&entities.Batch{}).
		Where("id = ? AND locator_ref IS NULL", id).
		Update("locator_ref", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("batch %d: %w", id, errLocatorAlreadySet)
	}
	return nil
}

func (r *batchRepository) GetBatchByID(ctx context.Context, id uint) (*entities.Batch, error) {
	var batch entities.Batch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) GetBatchByCode(ctx context.Context, code string) (*entities.Batch, error) {
	var batch entities.Batch
	if err := r.db.WithContext(ctx).Where("batch_code = ?", code).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) Transaction(ctx context.Context, fn func(repo BatchRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&batchRepository{db: tx})
	})
}

// isDuplicateKey reports a unique constraint violation from either driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
