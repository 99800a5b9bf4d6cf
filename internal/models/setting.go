package models

// StoreSetting maps to the `store_setting` key-value table. Gateway
// configuration lives here under gateway_* keys so it can be changed from
// the admin panel without a redeploy.
type StoreSetting struct {
	Key   string `gorm:"column:setting_key;primaryKey;size:100" json:"key"`
	Value string `gorm:"column:setting_value;type:text" json:"value"`
}

func (StoreSetting) TableName() string {
	return "store_setting"
}

// Gateway setting keys.
const (
	SettingGatewayEnabled         = "gateway_enabled"
	SettingGatewayBaseURL         = "gateway_base_url"
	SettingGatewayTransport       = "gateway_transport"
	SettingGatewaySecret          = "gateway_secret"
	SettingGatewayRedirectURL     = "gateway_redirect_url"
	SettingGatewayNotifyURL       = "gateway_notify_url"
	SettingGatewayMaxInstallments = "gateway_max_installments"
	SettingGatewayVATExempt       = "gateway_vat_exempt"
	SettingGatewayDiscount        = "gateway_discount"
	SettingGatewayForceTest       = "gateway_force_test"
)
