package entities

import (
	"time"
)

// LabReport is one lab attestation. SHA256Hash is computed server-side over
// the stored artifact bytes.
type LabReport struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID     uint      `gorm:"not null;index:idx_lab_reports_batch_uploaded,priority:1" json:"batch_id"`
	Batch       *Batch    `gorm:"foreignKey:BatchID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	ArtifactRef string    `gorm:"column:file_path;type:varchar(255);not null" json:"artifact_ref"`
	SHA256Hash  string    `gorm:"column:sha256_hash;type:char(64);not null" json:"sha256_hash"`
	UploadedAt  time.Time `gorm:"not null;autoCreateTime:false;index:idx_lab_reports_batch_uploaded,priority:2" json:"uploaded_at"`
}

func (LabReport) TableName() string {
	return "lab_reports"
}
