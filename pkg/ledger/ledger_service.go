package ledger

import (
	"HerbPass/domain"
	"HerbPass/entities"
	"HerbPass/internal/utils"
	"HerbPass/internal/utils/metrics"
	"HerbPass/internal/utils/storage"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	LedgerService interface {
		AppendLabReport(ctx context.Context, batchID uint, report domain.Upload) (domain.LabReportResponse, error)
		VerifyLabReport(ctx context.Context, id uint) (domain.LabReportVerification, error)
		AppendStatus(ctx context.Context, batchID uint, status string) (domain.StatusEventResponse, error)
		// CurrentStatus reports found=false for a known batch with no events.
		CurrentStatus(ctx context.Context, batchID uint) (domain.StatusEventResponse, bool, error)
	}

	Options struct {
		DefaultStatus string
		Clock         utils.Clock
		Logger        *zap.Logger
		Metrics       *metrics.Ledger
	}

	ledgerService struct {
		ledgerRepository LedgerRepository
		store            storage.EvidenceStore
		defaultStatus    string
		clock            utils.Clock
		logger           *zap.Logger
		metrics          *metrics.Ledger
	}
)

func NewLedgerService(ledgerRepository LedgerRepository, store storage.EvidenceStore, opts Options) LedgerService {
	s := &ledgerService{
		ledgerRepository: ledgerRepository,
		store:            store,
		defaultStatus:    strings.TrimSpace(opts.DefaultStatus),
		clock:            opts.Clock,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
	}
	if s.defaultStatus == "" {
		s.defaultStatus = domain.DefaultPharmaStatus
	}
	if s.clock == nil {
		s.clock = utils.NewClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// AppendLabReport stores the report bytes, then records their digest. The row
// is only committed after the bytes are durable, and bytes whose row could
// not be committed are removed.
func (s *ledgerService) AppendLabReport(ctx context.Context, batchID uint, report domain.Upload) (domain.LabReportResponse, error) {
	if _, err := storage.CheckExtension(storage.ClassDocument, report.Filename); err != nil {
		s.metrics.IncRejectedUpload("report_extension")
		return domain.LabReportResponse{}, err
	}
	if len(report.Data) == 0 {
		return domain.LabReportResponse{}, fmt.Errorf("%w: lab report is empty", domain.ErrValidation)
	}

	code, err := s.ledgerRepository.FindBatchCode(ctx, batchID)
	if err != nil {
		return domain.LabReportResponse{}, batchLookupError(batchID, "lab report", err)
	}

	artifact, err := s.store.Store(ctx, storage.ClassDocument, "lab_"+code, report.Filename, report.Data)
	if err != nil {
		return domain.LabReportResponse{}, fmt.Errorf("batch %d: lab report: %w", batchID, err)
	}
	s.metrics.AddArtifactBytes(string(storage.ClassDocument), artifact.Size)

	row := &entities.LabReport{
		BatchID:     batchID,
		ArtifactRef: artifact.Ref,
		SHA256Hash:  artifact.Digest,
	}
	err = s.ledgerRepository.Transaction(ctx, func(repo LedgerRepository) error {
		if _, err := repo.FindBatchCode(ctx, batchID); err != nil {
			return err
		}
		row.UploadedAt = utils.Timestamp(s.clock)
		return repo.CreateLabReport(ctx, row)
	})
	if err != nil {
		if removeErr := storage.Discard(ctx, s.store, artifact.Ref); removeErr != nil {
			s.logger.Warn("failed to remove orphaned lab report",
				zap.Uint("batch_id", batchID),
				zap.String("ref", artifact.Ref),
				zap.Error(removeErr),
			)
		}
		return domain.LabReportResponse{}, batchLookupError(batchID, "lab report", err)
	}

	s.metrics.IncLabReport()
	s.logger.Info("lab report appended",
		zap.Uint("batch_id", batchID),
		zap.Uint("lab_report_id", row.ID),
		zap.String("sha256", row.SHA256Hash),
	)
	return ToLabReportResponse(row), nil
}

func (s *ledgerService) VerifyLabReport(ctx context.Context, id uint) (domain.LabReportVerification, error) {
	report, err := s.ledgerRepository.GetLabReportByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LabReportVerification{}, fmt.Errorf("%w: %d", domain.ErrLabReportNotFound, id)
		}
		return domain.LabReportVerification{}, fmt.Errorf("%w: lab report %d: %w", domain.ErrPersistenceFailure, id, err)
	}

	res := domain.LabReportVerification{
		LabReportID:    report.ID,
		ArtifactRef:    report.ArtifactRef,
		RecordedDigest: report.SHA256Hash,
	}
	actual, err := s.store.Digest(ctx, report.ArtifactRef)
	switch {
	case errors.Is(err, domain.ErrArtifactNotFound):
		s.logger.Warn("lab report bytes missing", zap.Uint("lab_report_id", id), zap.String("ref", report.ArtifactRef))
		return res, nil
	case err != nil:
		return domain.LabReportVerification{}, fmt.Errorf("lab report %d: %w", id, err)
	}

	res.ActualDigest = actual
	res.Intact = actual == report.SHA256Hash
	if !res.Intact {
		s.logger.Warn("lab report digest mismatch",
			zap.Uint("lab_report_id", id),
			zap.String("recorded", report.SHA256Hash),
			zap.String("actual", actual),
		)
	}
	return res, nil
}

func (s *ledgerService) AppendStatus(ctx context.Context, batchID uint, status string) (domain.StatusEventResponse, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		status = s.defaultStatus
	}

	row := &entities.PharmaStatus{
		BatchID: batchID,
		Status:  status,
	}
	err := s.ledgerRepository.Transaction(ctx, func(repo LedgerRepository) error {
		if _, err := repo.FindBatchCode(ctx, batchID); err != nil {
			return err
		}
		row.UpdatedAt = utils.Timestamp(s.clock)
		return repo.CreatePharmaStatus(ctx, row)
	})
	if err != nil {
		return domain.StatusEventResponse{}, batchLookupError(batchID, "pharma status", err)
	}

	s.metrics.IncStatusEvent(status)
	s.logger.Info("pharma status appended",
		zap.Uint("batch_id", batchID),
		zap.String("status", status),
	)
	return ToStatusEventResponse(row), nil
}

func (s *ledgerService) CurrentStatus(ctx context.Context, batchID uint) (domain.StatusEventResponse, bool, error) {
	if _, err := s.ledgerRepository.FindBatchCode(ctx, batchID); err != nil {
		return domain.StatusEventResponse{}, false, batchLookupError(batchID, "current status", err)
	}

	latest, err := s.ledgerRepository.GetLatestPharmaStatus(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StatusEventResponse{}, false, nil
		}
		return domain.StatusEventResponse{}, false, fmt.Errorf("%w: batch %d: current status: %w", domain.ErrPersistenceFailure, batchID, err)
	}
	return ToStatusEventResponse(latest), true, nil
}

func batchLookupError(batchID uint, stage string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: batch %d: %s", domain.ErrBatchNotFound, batchID, stage)
	}
	return fmt.Errorf("%w: batch %d: %s: %w", domain.ErrPersistenceFailure, batchID, stage, err)
}

func ToLabReportResponse(r *entities.LabReport) domain.LabReportResponse {
	return domain.LabReportResponse{
		ID:          r.ID,
		BatchID:     r.BatchID,
		ArtifactRef: r.ArtifactRef,
		SHA256Hash:  r.SHA256Hash,
		UploadedAt:  r.UploadedAt,
	}
}

func ToStatusEventResponse(s *entities.PharmaStatus) domain.StatusEventResponse {
	return domain.StatusEventResponse{
		ID:        s.ID,
		BatchID:   s.BatchID,
		Status:    s.Status,
		UpdatedAt: s.UpdatedAt,
	}
}
