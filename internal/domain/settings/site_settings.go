package settings

import (
	"time"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

// SingletonID is the primary key of the only site settings row.
const SingletonID uint = 1

// SiteSettings is the single admin-editable configuration record.
type SiteSettings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyName shared.LocalizedColumn `gorm:"column:company_name" json:"company_name"`
	Tagline     shared.LocalizedColumn `gorm:"column:tagline" json:"tagline"`
	Address     shared.LocalizedColumn `gorm:"column:address" json:"address"`
	Email       string                 `gorm:"column:email" json:"email"`
	Phone       string                 `gorm:"column:phone" json:"phone"`

	WhatsAppNumber  string                 `gorm:"column:whatsapp_number" json:"whatsapp_number"`
	WhatsAppEnabled bool                   `gorm:"not null;default:false;column:whatsapp_enabled" json:"whatsapp_enabled"`
	WhatsAppMessage shared.LocalizedColumn `gorm:"column:whatsapp_message" json:"whatsapp_message"`

	FacebookURL  string `gorm:"column:facebook_url" json:"facebook_url"`
	InstagramURL string `gorm:"column:instagram_url" json:"instagram_url"`
	LinkedInURL  string `gorm:"column:linkedin_url" json:"linkedin_url"`
	YouTubeURL   string `gorm:"column:youtube_url" json:"youtube_url"`

	DefaultLocale string `gorm:"not null;default:'en';column:default_locale" json:"default_locale"`

	ThemePrimary    string `gorm:"column:theme_primary" json:"theme_primary"`
	ThemeSecondary  string `gorm:"column:theme_secondary" json:"theme_secondary"`
	ThemeAccent     string `gorm:"column:theme_accent" json:"theme_accent"`
	ThemeBackground string `gorm:"column:theme_background" json:"theme_background"`
	ThemeText       string `gorm:"column:theme_text" json:"theme_text"`
	FontFamily      string `gorm:"column:font_family" json:"font_family"`

	SMTPHost     string `gorm:"column:smtp_host" json:"smtp_host"`
	SMTPPort     int    `gorm:"column:smtp_port" json:"smtp_port"`
	SMTPUsername string `gorm:"column:smtp_username" json:"smtp_username"`
	SMTPPassword string `gorm:"column:smtp_password" json:"-"`
	SMTPFrom     string `gorm:"column:smtp_from" json:"smtp_from"`
	NotifyEmail  string `gorm:"column:notify_email" json:"notify_email"`

	GoogleAnalyticsID string `gorm:"column:google_analytics_id" json:"google_analytics_id"`
	FacebookPixelID   string `gorm:"column:facebook_pixel_id" json:"facebook_pixel_id"`
	RecaptchaSiteKey  string `gorm:"column:recaptcha_site_key" json:"recaptcha_site_key"`
	RecaptchaSecret   string `gorm:"column:recaptcha_secret" json:"-"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SiteSettings) TableName() string { return "site_settings" }

// Defaults returns the record created on first read.
func Defaults() *SiteSettings {
	return &SiteSettings{
		ID: SingletonID,
		CompanyName: shared.NewLocalized(shared.LocalizedText{
			"en": "Marmora Stone Export",
			"ar": "مرمرة لتصدير الأحجار",
			"es": "Marmora Exportación de Piedra",
			"fr": "Marmora Export de Pierre",
		}),
		Tagline: shared.NewLocalized(shared.LocalizedText{
			"en": "Natural marble and granite, quarried and shipped worldwide",
			"ar": "رخام وجرانيت طبيعي من المحجر إلى العالم",
			"es": "Mármol y granito natural, extraído y enviado a todo el mundo",
			"fr": "Marbre et granit naturels, extraits et expédiés dans le monde entier",
		}),
		Address:         shared.NewLocalized(nil),
		WhatsAppMessage: shared.NewLocalized(nil),
		DefaultLocale:   "en",
		ThemePrimary:    "#1f2937",
		ThemeSecondary:  "#9ca3af",
		ThemeAccent:     "#b45309",
		ThemeBackground: "#ffffff",
		ThemeText:       "#111827",
		FontFamily:      "Inter, system-ui, sans-serif",
		SMTPPort:        587,
	}
}
