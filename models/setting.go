package models

// Setting keys read or advanced by the API itself.
const (
	SettingLastInvoiceNumber = "last_invoice_number"
	SettingLastQuoteNumber   = "last_quote_number"
	SettingLastPaymentNumber = "last_payment_number"
	SettingAppEmail          = "idurar_app_email"
	SettingBaseURL           = "idurar_base_url"
)

type Setting struct {
	SettingCategory string      `bson:"settingCategory" json:"settingCategory"`
	SettingKey      string      `bson:"settingKey" json:"settingKey"`
	SettingValue    interface{} `bson:"settingValue" json:"settingValue"`
	ValueType       string      `bson:"valueType,omitempty" json:"valueType,omitempty"`
	IsPrivate       bool        `bson:"isPrivate" json:"isPrivate"`
	IsCoreSetting   bool        `bson:"isCoreSetting" json:"isCoreSetting"`
	Enabled         bool        `bson:"enabled" json:"enabled"`
	Removed         bool        `bson:"removed" json:"removed"`
}

// Settings maps setting keys to their values.
type Settings map[string]interface{}

// StringOr returns the string value of key, or fallback when the setting is
// missing, empty or not a string.
func (s Settings) StringOr(key, fallback string) string {
	if v, ok := s[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
