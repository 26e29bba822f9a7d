package config

import (
	"HerbPass/internal/utils"
	"HerbPass/internal/utils/storage"
	"context"

	"go.uber.org/zap"
)

// NewEvidenceStore builds the store selected by STORAGE_DRIVER.
func NewEvidenceStore(ctx context.Context, cfg *utils.Config, logger *zap.Logger) (storage.EvidenceStore, error) {
	if cfg.StorageDriver == "s3" {
		logger.Info("evidence store: s3", zap.String("bucket", cfg.AWSS3Bucket), zap.String("prefix", cfg.AWSS3Prefix))
		return storage.NewAwsS3(ctx, storage.S3Config{
			Bucket:    cfg.AWSS3Bucket,
			Region:    cfg.AWSS3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.AWSS3Endpoint,
			Prefix:    cfg.AWSS3Prefix,
		})
	}
	logger.Info("evidence store: local", zap.String("folder", cfg.UploadFolder))
	return storage.NewLocalStore(cfg.UploadFolder)
}
