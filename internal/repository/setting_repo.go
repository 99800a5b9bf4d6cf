package repository

import (
	"gorm.io/gorm"

	"storeapi/internal/config"
	"storeapi/internal/gateway"
	"storeapi/internal/models"
	"storeapi/internal/pkg/utils"
)

// SettingRepository handles the store_setting key-value table.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns a setting value, empty string when unset.
func (r *SettingRepository) Get(key string) (string, error) {
	var setting models.StoreSetting
	err := r.db.Where("setting_key = ?", key).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set upserts a setting value.
func (r *SettingRepository) Set(key, value string) error {
	res := r.db.Model(&models.StoreSetting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.Create(&models.StoreSetting{Key: key, Value: value}).Error
	}
	return nil
}

// All returns every setting as a map. The gateway secret is masked; this
// feeds the admin settings screen.
func (r *SettingRepository) All() (map[string]string, error) {
	var settings []models.StoreSetting
	if err := r.db.Find(&settings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		if s.Key == models.SettingGatewaySecret {
			out[s.Key] = utils.MaskSecret(s.Value)
			continue
		}
		out[s.Key] = s.Value
	}
	return out, nil
}

// GatewayConfig assembles the read-only gateway snapshot: store settings
// first, environment config as fallback per key.
func (r *SettingRepository) GatewayConfig(env config.GatewayConfig) gateway.Config {
	cfg := gateway.Config{
		Enabled:         env.Enabled,
		BaseURL:         env.BaseURL,
		Transport:       env.Transport,
		Secret:          env.Secret,
		RedirectURL:     env.RedirectURL,
		NotifyURL:       env.NotifyURL,
		MaxInstallments: env.MaxInstallments,
		VATExempt:       env.VATExempt,
		Discount:        env.Discount,
		ForceTest:       env.ForceTest,
		MinTimeout:      env.MinTimeout,
		MaxTimeout:      env.MaxTimeout,
	}

	if v, _ := r.Get(models.SettingGatewayEnabled); v != "" {
		cfg.Enabled = utils.ParseBool(v)
	}
	if v, _ := r.Get(models.SettingGatewayBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := r.Get(models.SettingGatewayTransport); v != "" {
		cfg.Transport = v
	}
	if v, _ := r.Get(models.SettingGatewaySecret); v != "" {
		cfg.Secret = v
	}
	if v, _ := r.Get(models.SettingGatewayRedirectURL); v != "" {
		cfg.RedirectURL = v
	}
	if v, _ := r.Get(models.SettingGatewayNotifyURL); v != "" {
		cfg.NotifyURL = v
	}
	if v, _ := r.Get(models.SettingGatewayMaxInstallments); v != "" {
		cfg.MaxInstallments = utils.ParseInt(v, cfg.MaxInstallments)
	}
	if v, _ := r.Get(models.SettingGatewayVATExempt); v != "" {
		cfg.VATExempt = utils.ParseBool(v)
	}
	if v, _ := r.Get(models.SettingGatewayDiscount); v != "" {
		cfg.Discount = utils.ParseFloat(v, cfg.Discount)
	}
	if v, _ := r.Get(models.SettingGatewayForceTest); v != "" {
		cfg.ForceTest = utils.ParseBool(v)
	}
	return cfg
}
