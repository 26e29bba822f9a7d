package batch

import (
	"HerbPass/domain"
	"HerbPass/entities"
	"HerbPass/internal/utils"
	"HerbPass/internal/utils/locator"
	"HerbPass/internal/utils/metrics"
	"HerbPass/internal/utils/storage"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeAttempts = 5

type (
	BatchService interface {
		CreateBatch(ctx context.Context, req domain.CreateBatchRequest, photo *domain.Upload) (domain.CreateBatchResponse, error)
		ResolveBatchURL(id uint) string
	}

	// CodeGenerator returns a candidate batch code.
	CodeGenerator func() string

	Options struct {
		BaseURL string
		Codes   CodeGenerator
		Clock   utils.Clock
		Logger  *zap.Logger
		Metrics *metrics.Ledger
	}

	batchService struct {
		batchRepository BatchRepository
		store           storage.EvidenceStore
		codec           *locator.Codec
		baseURL         string
		codes           CodeGenerator
		clock           utils.Clock
		logger          *zap.Logger
		metrics         *metrics.Ledger
	}
)

func NewBatchService(batchRepository BatchRepository, store storage.EvidenceStore, codec *locator.Codec, opts Options) BatchService {
	s := &batchService{
		batchRepository: batchRepository,
		store:           store,
		codec:           codec,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		codes:           opts.Codes,
		clock:           opts.Clock,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}
	if s.codes == nil {
		s.codes = GenerateBatchCode
	}
	if s.clock == nil {
		s.clock = utils.NewClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// GenerateBatchCode returns "HB-" followed by ten upper-case hex digits taken
// from a random UUID, about 40 bits of entropy.
func GenerateBatchCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.BatchCodePrefix + strings.ToUpper(hex[:10])
}

func (s *batchService) ResolveBatchURL(id uint) string {
	return s.baseURL + "/batch/" + strconv.FormatUint(uint64(id), 10)
}

func (s *batchService) CreateBatch(ctx context.Context, req domain.CreateBatchRequest, photo *domain.Upload) (domain.CreateBatchResponse, error) {
	if strings.TrimSpace(req.HerbName) == "" {
		return domain.CreateBatchResponse{}, fmt.Errorf("%w: herb_name is required", domain.ErrValidation)
	}
	if photo != nil && len(photo.Data) == 0 {
		photo = nil
	}
	if photo != nil {
		if _, err := storage.CheckExtension(storage.ClassImage, photo.Filename); err != nil {
			s.metrics.IncRejectedUpload("photo_extension")
			return domain.CreateBatchResponse{}, err
		}
	}

	var (
		res     domain.CreateBatchResponse
		attempt int
	)
	operation := func() error {
		attempt++
		created, err := s.createOnce(ctx, req, photo)
		if err == nil {
			res = created
			return nil
		}
		if isDuplicateKey(err) {
			s.metrics.IncCodeCollision()
			s.logger.Warn("batch code collision, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(collisionBackOff(), maxCodeAttempts-1), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		if isDuplicateKey(err) {
			return domain.CreateBatchResponse{}, fmt.Errorf("%w: no unique batch code after %d attempts: %w",
				domain.ErrPersistenceFailure, attempt, err)
		}
		return domain.CreateBatchResponse{}, err
	}

	s.metrics.IncBatchCreated()
	s.logger.Info("batch created",
		zap.Uint("batch_id", res.ID),
		zap.String("batch_code", res.BatchCode),
		zap.String("locator_ref", res.LocatorRef),
	)
	return res, nil
}

// createOnce inserts the batch and backfills its locator in one transaction,
// so a committed batch always has a locator. Bytes written for a rolled back
// attempt are removed.
func (s *batchService) createOnce(ctx context.Context, req domain.CreateBatchRequest, photo *domain.Upload) (domain.CreateBatchResponse, error) {
	code := s.codes()

	var written []string
	cleanup := func() {
		for _, ref := range written {
			if err := storage.Discard(ctx, s.store, ref); err != nil {
				s.logger.Warn("failed to remove orphaned artifact", zap.String("ref", ref), zap.Error(err))
			}
		}
	}

	batch := &entities.Batch{
		Code:       code,
		HerbName:   strings.TrimSpace(req.HerbName),
		FarmerName: req.FarmerName,
		Phone:      req.Phone,
		GPSLat:     req.GPSLat,
		GPSLng:     req.GPSLng,
		CreatedAt:  utils.Timestamp(s.clock),
	}

	if photo != nil {
		artifact, err := s.store.Store(ctx, storage.ClassImage, "photo_"+code, photo.Filename, photo.Data)
		if err != nil {
			return domain.CreateBatchResponse{}, err
		}
		written = append(written, artifact.Ref)
		batch.PhotoRef = &artifact.Ref
		s.metrics.AddArtifactBytes(string(storage.ClassImage), artifact.Size)
	}

	var locatorRef, locatorURL string
	err := s.batchRepository.Transaction(ctx, func(repo BatchRepository) error {
		if err := repo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		locatorURL = s.ResolveBatchURL(batch.ID)
		image, err := s.codec.Encode(locatorURL)
		if err != nil {
			return err
		}
		artifact, err := s.store.Store(ctx, storage.ClassImage, "qr_"+code, "qr.png", image)
		if err != nil {
			return err
		}
		written = append(written, artifact.Ref)
		s.metrics.AddArtifactBytes(string(storage.ClassImage), artifact.Size)

		if err := repo.SetLocatorRef(ctx, batch.ID, artifact.Ref); err != nil {
			return err
		}
		locatorRef = artifact.Ref
		return nil
	})
	if err != nil {
		cleanup()
		switch {
		case isDuplicateKey(err),
			errors.Is(err, domain.ErrStorageWriteFailed),
			errors.Is(err, domain.ErrValidation):
			return domain.CreateBatchResponse{}, err
		default:
			return domain.CreateBatchResponse{}, fmt.Errorf("%w: create batch %s: %w", domain.ErrPersistenceFailure, code, err)
		}
	}

	res := domain.CreateBatchResponse{
		ID:         batch.ID,
		BatchCode:  code,
		LocatorRef: locatorRef,
		LocatorURL: locatorURL,
	}
	if batch.PhotoRef != nil {
		res.PhotoRef = *batch.PhotoRef
	}
	return res, nil
}

func collisionBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return b
}
