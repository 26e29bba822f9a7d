package domain

import (
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateBatch = "batch created, locator generated"
	MessageSuccessGetBatch    = "batch provenance retrieved successfully"

	MessageFailedCreateBatch = "failed to create batch"
	MessageFailedGetBatch    = "failed to retrieve batch provenance"
	MessageBatchNotFound     = "batch not found"
)

type (
	CreateBatchRequest struct {
		HerbName   string                `json:"herb_name" form:"herb_name" validate:"required"`
		FarmerName string                `json:"farmer_name" form:"farmer_name" validate:"omitempty,max=255"`
		Phone      string                `json:"phone" form:"phone" validate:"omitempty,max=50"`
		GPSLat     string                `json:"gps_lat" form:"gps_lat" validate:"omitempty,max=50"`
		GPSLng     string                `json:"gps_lng" form:"gps_lng" validate:"omitempty,max=50"`
		Photo      *multipart.FileHeader `json:"photo" form:"photo"`
	}

	CreateBatchResponse struct {
		ID         uint   `json:"id"`
		BatchCode  string `json:"batch_code"`
		PhotoRef   string `json:"photo_ref,omitempty"`
		LocatorRef string `json:"locator_ref"`
		LocatorURL string `json:"locator_url"`
	}

	BatchResponse struct {
		ID         uint      `json:"id"`
		BatchCode  string    `json:"batch_code"`
		HerbName   string    `json:"herb_name"`
		FarmerName string    `json:"farmer_name"`
		Phone      string    `json:"phone"`
		GPSLat     string    `json:"gps_lat"`
		GPSLng     string    `json:"gps_lng"`
		PhotoRef   string    `json:"photo_ref,omitempty"`
		LocatorRef string    `json:"locator_ref"`
		CreatedAt  time.Time `json:"created_at"`
	}

	// BatchView is the point-in-time provenance chain of one batch.
	BatchView struct {
		Batch         BatchResponse         `json:"batch"`
		LabReports    []LabReportResponse   `json:"lab_reports"`
		StatusEvents  []StatusEventResponse `json:"status_events"`
		CurrentStatus *StatusEventResponse  `json:"current_status,omitempty"`
	}
)
