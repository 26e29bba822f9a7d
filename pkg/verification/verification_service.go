package verification

import (
	"HerbPass/domain"
	"HerbPass/entities"
	"HerbPass/pkg/ledger"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	// VerificationService assembles the consumer-facing provenance chain.
	// found is false when no batch matches; that is not an error.
	VerificationService interface {
		GetBatchView(ctx context.Context, id uint) (domain.BatchView, bool, error)
		GetBatchViewByCode(ctx context.Context, code string) (domain.BatchView, bool, error)
	}

	verificationService struct {
		verificationRepository VerificationRepository
		logger                 *zap.Logger
	}
)

func NewVerificationService(verificationRepository VerificationRepository, logger *zap.Logger) VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &verificationService{
		verificationRepository: verificationRepository,
		logger:                 logger,
	}
}

func (s *verificationService) GetBatchView(ctx context.Context, id uint) (domain.BatchView, bool, error) {
	return s.load(ctx, fmt.Sprintf("id %d", id), func(repo VerificationRepository) (*entities.Batch, error) {
		return repo.GetBatchByID(ctx, id)
	})
}

func (s *verificationService) GetBatchViewByCode(ctx context.Context, code string) (domain.BatchView, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.BatchView{}, false, fmt.Errorf("%w: batch code is required", domain.ErrValidation)
	}
	return s.load(ctx, "code "+code, func(repo VerificationRepository) (*entities.Batch, error) {
		return repo.GetBatchByCode(ctx, code)
	})
}

func (s *verificationService) load(ctx context.Context, key string, find func(VerificationRepository) (*entities.Batch, error)) (domain.BatchView, bool, error) {
	var (
		batch    *entities.Batch
		reports  []entities.LabReport
		statuses []entities.PharmaStatus
	)
	err := s.verificationRepository.Snapshot(ctx, func(repo VerificationRepository) error {
		var err error
		if batch, err = find(repo); err != nil {
			return err
		}
		if reports, err = repo.ListLabReports(ctx, batch.ID); err != nil {
			return err
		}
		statuses, err = repo.ListPharmaStatuses(ctx, batch.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BatchView{}, false, nil
		}
		s.logger.Error("failed to read batch view", zap.String("batch", key), zap.Error(err))
		return domain.BatchView{}, false, fmt.Errorf("%w: batch %s: view: %w", domain.ErrPersistenceFailure, key, err)
	}
	return toBatchView(batch, reports, statuses), true, nil
}

func toBatchView(batch *entities.Batch, reports []entities.LabReport, statuses []entities.PharmaStatus) domain.BatchView {
	view := domain.BatchView{
		Batch: domain.BatchResponse{
			ID:         batch.ID,
			BatchCode:  batch.Code,
			HerbName:   batch.HerbName,
			FarmerName: batch.FarmerName,
			Phone:      batch.Phone,
			GPSLat:     batch.GPSLat,
			GPSLng:     batch.GPSLng,
			CreatedAt:  batch.CreatedAt,
		},
		LabReports:   make([]domain.LabReportResponse, 0, len(reports)),
		StatusEvents: make([]domain.StatusEventResponse, 0, len(statuses)),
	}
	if batch.PhotoRef != nil {
		view.Batch.PhotoRef = *batch.PhotoRef
	}
	if batch.LocatorRef != nil {
		view.Batch.LocatorRef = *batch.LocatorRef
	}

	for i := range reports {
		view.LabReports = append(view.LabReports, ledger.ToLabReportResponse(&reports[i]))
	}
	for i := range statuses {
		view.StatusEvents = append(view.StatusEvents, ledger.ToStatusEventResponse(&statuses[i]))
	}
	if n := len(view.StatusEvents); n > 0 {
		current := view.StatusEvents[n-1]
		view.CurrentStatus = &current
	}
	return view
}
