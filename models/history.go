package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
)

// History is the console's own action log. It is only kept when a database is configured.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   string    `gorm:"size:64;index" json:"reference_id"`
	ReferenceType string    `gorm:"size:32;index" json:"reference_type"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
	ClientIP      string    `gorm:"size:64" json:"client_ip"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func MigrateTable() error {
	db := config.GetDB()
	if db == nil {
		return config.ErrDatabaseDisabled
	}
	return db.AutoMigrate(&History{})
}

func createHistory(ctx context.Context,
	actionType ActionType,
	referenceId string,
	referenceType string,
	before interface{},
	after interface{},
	description string) error {

	db := config.GetDB()
	if db == nil {
		return nil
	}

	var history History
	if before != nil {
		b, _ := json.Marshal(before)
		history.Before = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		history.After = string(a)
	}
	history.ActionType = string(actionType)
	history.Description = description
	history.ReferenceID = referenceId
	history.ReferenceType = referenceType
	history.CorrelationId, _ = utils.GetCorrelationIdFromContext(ctx)
	history.ClientIP, _ = utils.GetClientIPFromContext(ctx)

	return db.WithContext(ctx).Create(&history).Error
}

// ListHistory returns the latest entries first, optionally for one reference type.
func ListHistory(ctx context.Context, referenceType string, limit int) ([]*History, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseDisabled
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var results []*History
	dbCtx := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if referenceType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", referenceType)
	}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
