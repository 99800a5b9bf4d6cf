package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"storeapi/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows for
// singleton tables.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Product{},
		&models.Banner{},
		&models.PaymentSession{},
		&models.Order{},
		&models.StoreSetting{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return ensureGatewaySettings(tx)
	})
}

// ensureGatewaySettings inserts the gateway_* keys so the admin panel always
// has rows to edit. Existing values are never overwritten.
func ensureGatewaySettings(tx *gorm.DB) error {
	defaults := map[string]string{
		models.SettingGatewayEnabled:         "",
		models.SettingGatewayBaseURL:         "",
		models.SettingGatewayTransport:       "",
		models.SettingGatewaySecret:          "",
		models.SettingGatewayRedirectURL:     "",
		models.SettingGatewayNotifyURL:       "",
		models.SettingGatewayMaxInstallments: "",
		models.SettingGatewayVATExempt:       "",
		models.SettingGatewayDiscount:        "",
		models.SettingGatewayForceTest:       "",
	}
	for key, value := range defaults {
		var count int64
		if err := tx.Model(&models.StoreSetting{}).
			Where("setting_key = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := tx.Create(&models.StoreSetting{Key: key, Value: value}).Error; err != nil {
			return err
		}
	}
	return nil
}
