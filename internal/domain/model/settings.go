package model

import "time"

// StoreSettings — настройки магазина (документ settings/general).
// Обновляется по секциям с merge-семантикой: незаполненные секции не затираются.
type StoreSettings struct {
	// --- Магазин ---
	StoreName    string `bson:"storeName,omitempty" json:"store_name,omitempty"`
	StoreEmail   string `bson:"storeEmail,omitempty" json:"store_email,omitempty"`
	StorePhone   string `bson:"storePhone,omitempty" json:"store_phone,omitempty"`
	StoreAddress string `bson:"storeAddress,omitempty" json:"store_address,omitempty"`
	LogoURL      string `bson:"logoUrl,omitempty" json:"logo_url,omitempty"`

	// --- Доставка ---
	ShippingBaseCost      float64 `bson:"shippingBaseCost,omitempty" json:"shipping_base_cost,omitempty"`
	ShippingFreeThreshold float64 `bson:"shippingFreeThreshold,omitempty" json:"shipping_free_threshold,omitempty"`
	ShippingDays          int     `bson:"shippingDays,omitempty" json:"shipping_days,omitempty"`

	// --- Оплата ---
	PaymentCardEnabled           bool   `bson:"paymentCardEnabled,omitempty" json:"payment_card_enabled,omitempty"`
	PaymentAPIKey                string `bson:"paymentApiKey,omitempty" json:"payment_api_key,omitempty"`
	PaymentCashOnDeliveryEnabled bool   `bson:"paymentCashOnDeliveryEnabled,omitempty" json:"payment_cash_on_delivery_enabled,omitempty"`

	// --- Социальные сети ---
	SocialFacebook  string `bson:"socialFacebook,omitempty" json:"social_facebook,omitempty"`
	SocialTwitter   string `bson:"socialTwitter,omitempty" json:"social_twitter,omitempty"`
	SocialInstagram string `bson:"socialInstagram,omitempty" json:"social_instagram,omitempty"`
	SocialWhatsapp  string `bson:"socialWhatsapp,omitempty" json:"social_whatsapp,omitempty"`

	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// SiteContent — содержимое главной страницы магазина (документ content/main).
type SiteContent struct {
	BannerTitle    string    `bson:"bannerTitle,omitempty" json:"banner_title,omitempty"`
	BannerSubtitle string    `bson:"bannerSubtitle,omitempty" json:"banner_subtitle,omitempty"`
	BannerImage    string    `bson:"bannerImage,omitempty" json:"banner_image,omitempty"`
	AboutText      string    `bson:"aboutText,omitempty" json:"about_text,omitempty"`
	ContactText    string    `bson:"contactText,omitempty" json:"contact_text,omitempty"`
	UpdatedAt      time.Time `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}
