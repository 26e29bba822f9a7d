package domain

import (
	"mime/multipart"
	"time"
)

var (
	MessageSuccessAppendLabReport = "lab report uploaded and hashed"
	MessageSuccessVerifyLabReport = "lab report digest checked"
	MessageSuccessAppendStatus    = "pharma status updated"
	MessageSuccessGetStatus       = "current status retrieved successfully"

	MessageFailedAppendLabReport = "failed to upload lab report"
	MessageFailedVerifyLabReport = "failed to verify lab report"
	MessageFailedAppendStatus    = "failed to update pharma status"
	MessageFailedGetStatus       = "failed to retrieve current status"
	MessageNoStatusYet           = "no status recorded for batch"
)

type (
	AppendLabReportRequest struct {
		BatchID uint                  `json:"batch_id" form:"batch_id" validate:"required,min=1"`
		Report  *multipart.FileHeader `json:"report" form:"report" validate:"required"`
	}

	LabReportResponse struct {
		ID          uint      `json:"id"`
		BatchID     uint      `json:"batch_id"`
		ArtifactRef string    `json:"artifact_ref"`
		SHA256Hash  string    `json:"sha256_hash"`
		UploadedAt  time.Time `json:"uploaded_at"`
	}

	LabReportVerification struct {
		LabReportID    uint   `json:"lab_report_id"`
		ArtifactRef    string `json:"artifact_ref"`
		RecordedDigest string `json:"recorded_digest"`
		ActualDigest   string `json:"actual_digest"`
		Intact         bool   `json:"intact"`
	}

	AppendStatusRequest struct {
		BatchID uint   `json:"batch_id" form:"batch_id" validate:"required,min=1"`
		Status  string `json:"status" form:"status" validate:"omitempty,max=100"`
	}

	StatusEventResponse struct {
		ID        uint      `json:"id"`
		BatchID   uint      `json:"batch_id"`
		Status    string    `json:"status"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)
