package entities

import (
	"time"
)

// PharmaStatus is one status transition. The current status of a batch is the
// row with the latest UpdatedAt; rows are never modified.
type PharmaStatus struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID   uint      `gorm:"not null;index:idx_pharma_statuses_batch_updated,priority:1" json:"batch_id"`
	Batch     *Batch    `gorm:"foreignKey:BatchID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Status    string    `gorm:"type:varchar(100);not null" json:"status"` // "Packaged", "Shipped", "Delivered", ...
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false;index:idx_pharma_statuses_batch_updated,priority:2" json:"updated_at"`
}

func (PharmaStatus) TableName() string {
	return "pharma_statuses"
}
