package entities

import (
	"time"
)

// Batch is the root provenance record created by the farmer. Only LocatorRef
// is ever written after insert, once, from NULL to set.
type Batch struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code       string    `gorm:"column:batch_code;type:varchar(13);uniqueIndex;not null" json:"batch_code"`
	HerbName   string    `gorm:"type:varchar(255);not null" json:"herb_name"`
	FarmerName string    `gorm:"type:varchar(255)" json:"farmer_name"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	GPSLat     string    `gorm:"column:gps_lat;type:varchar(50)" json:"gps_lat"`
	GPSLng     string    `gorm:"column:gps_lng;type:varchar(50)" json:"gps_lng"`
	PhotoRef   *string   `gorm:"type:varchar(255)" json:"photo_ref,omitempty"`
	LocatorRef *string   `gorm:"type:varchar(255)" json:"locator_ref,omitempty"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`

	LabReports     []LabReport    `gorm:"foreignKey:BatchID" json:"-"`
	PharmaStatuses []PharmaStatus `gorm:"foreignKey:BatchID" json:"-"`
}

func (Batch) TableName() string {
	return "farmer_batches"
}
