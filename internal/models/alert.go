package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertType classifies a stock alert
type AlertType string

const (
	AlertTypeLowStock   AlertType = "LOW_STOCK"
	AlertTypeOutOfStock AlertType = "OUT_OF_STOCK"
)

// AlertSeverity indicates how urgent an alert is
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// StockAlert represents a low or out of stock alert for an item. At most
// one unresolved alert exists per item.
type StockAlert struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemID            uuid.UUID       `json:"itemId" gorm:"type:uuid;not null;index:idx_stock_alerts_item"`
	AlertType         AlertType       `json:"alertType" gorm:"type:varchar(20);not null"`
	Severity          AlertSeverity   `json:"severity" gorm:"type:varchar(20);not null"`
	Message           string          `json:"message" gorm:"type:text;not null"`
	CurrentQuantity   decimal.Decimal `json:"currentQuantity" gorm:"type:decimal(18,4);not null"`
	ThresholdQuantity decimal.Decimal `json:"thresholdQuantity" gorm:"type:decimal(18,4);not null"`
	IsAcknowledged    bool            `json:"isAcknowledged" gorm:"not null;default:false"`
	AcknowledgedBy    *string         `json:"acknowledgedBy,omitempty" gorm:"type:varchar(255)"`
	AcknowledgedAt    *time.Time      `json:"acknowledgedAt,omitempty"`
	IsResolved        bool            `json:"isResolved" gorm:"not null;default:false;index:idx_stock_alerts_resolved"`
	ResolvedAt        *time.Time      `json:"resolvedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (StockAlert) TableName() string {
	return "stock_alerts"
}

// AlertResponse represents a single alert response
type AlertResponse struct {
	Success bool        `json:"success"`
	Data    *StockAlert `json:"data"`
}

// AlertListResponse represents a paginated list of alerts
type AlertListResponse struct {
	Success bool            `json:"success"`
	Data    []StockAlert    `json:"data"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}
