// store.go — сервис настроек магазина и контента главной страницы.
// Настройки обновляются по секциям: форма присылает только свою секцию,
// остальные поля документа не затрагиваются.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// SettingsStore — хранилище настроек и контента.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*model.StoreSettings, error)
	MergeSettings(ctx context.Context, fields bson.M) error
	GetContent(ctx context.Context) (*model.SiteContent, error)
	MergeContent(ctx context.Context, fields bson.M) error
}

// StoreService — сервис настроек магазина.
type StoreService struct {
	settings SettingsStore
	logger   *slog.Logger
}

// NewStoreService создаёт сервис настроек магазина.
func NewStoreService(settings SettingsStore, logger *slog.Logger) *StoreService {
	return &StoreService{
		settings: settings,
		logger:   logger.With(slog.String("component", "store_service")),
	}
}

// GetSettings возвращает настройки магазина.
func (s *StoreService) GetSettings(ctx context.Context) (*model.StoreSettings, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение настроек магазина: %w", err)
	}
	return settings, nil
}

// UpdateStoreSection обновляет секцию «магазин».
func (s *StoreService) UpdateStoreSection(ctx context.Context, name, email, phone, address string) error {
	fields := bson.M{
		"storeName":    name,
		"storeEmail":   email,
		"storePhone":   phone,
		"storeAddress": address,
	}
	if err := s.settings.MergeSettings(ctx, fields); err != nil {
		return fmt.Errorf("сохранение настроек магазина: %w", err)
	}
	s.logger.Info("Настройки магазина обновлены", slog.String("section", "store"))
	return nil
}

// UpdateShippingSection обновляет секцию «доставка».
func (s *StoreService) UpdateShippingSection(ctx context.Context, baseCost, freeThreshold float64, days int) error {
	fields := bson.M{
		"shippingBaseCost":      baseCost,
		"shippingFreeThreshold": freeThreshold,
		"shippingDays":          days,
	}
	if err := s.settings.MergeSettings(ctx, fields); err != nil {
		return fmt.Errorf("сохранение настроек доставки: %w", err)
	}
	s.logger.Info("Настройки магазина обновлены", slog.String("section", "shipping"))
	return nil
}

// UpdatePaymentSection обновляет секцию «оплата».
func (s *StoreService) UpdatePaymentSection(ctx context.Context, cardEnabled bool, apiKey string, cashEnabled bool) error {
	fields := bson.M{
		"paymentCardEnabled":           cardEnabled,
		"paymentCashOnDeliveryEnabled": cashEnabled,
	}
	// Пустой ключ не затирает сохранённый
	if apiKey != "" {
		fields["paymentApiKey"] = apiKey
	}
	if err := s.settings.MergeSettings(ctx, fields); err != nil {
		return fmt.Errorf("сохранение настроек оплаты: %w", err)
	}
	s.logger.Info("Настройки магазина обновлены", slog.String("section", "payment"))
	return nil
}

// UpdateSocialSection обновляет секцию «социальные сети».
func (s *StoreService) UpdateSocialSection(ctx context.Context, facebook, twitter, instagram, whatsapp string) error {
	fields := bson.M{
		"socialFacebook":  facebook,
		"socialTwitter":   twitter,
		"socialInstagram": instagram,
		"socialWhatsapp":  whatsapp,
	}
	if err := s.settings.MergeSettings(ctx, fields); err != nil {
		return fmt.Errorf("сохранение социальных сетей: %w", err)
	}
	s.logger.Info("Настройки магазина обновлены", slog.String("section", "social"))
	return nil
}

// GetContent возвращает контент главной страницы.
func (s *StoreService) GetContent(ctx context.Context) (*model.SiteContent, error) {
	content, err := s.settings.GetContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение контента: %w", err)
	}
	return content, nil
}

// UpdateBanner обновляет баннер главной страницы.
func (s *StoreService) UpdateBanner(ctx context.Context, title, subtitle, imageURL string) error {
	fields := bson.M{
		"bannerTitle":    title,
		"bannerSubtitle": subtitle,
	}
	if imageURL != "" {
		fields["bannerImage"] = imageURL
	}
	if err := s.settings.MergeContent(ctx, fields); err != nil {
		return fmt.Errorf("сохранение баннера: %w", err)
	}
	s.logger.Info("Контент обновлён", slog.String("section", "banner"))
	return nil
}

// UpdateAbout обновляет блок «о магазине».
func (s *StoreService) UpdateAbout(ctx context.Context, text string) error {
	if err := s.settings.MergeContent(ctx, bson.M{"aboutText": text}); err != nil {
		return fmt.Errorf("сохранение блока о магазине: %w", err)
	}
	s.logger.Info("Контент обновлён", slog.String("section", "about"))
	return nil
}

// UpdateContacts обновляет контактный блок.
func (s *StoreService) UpdateContacts(ctx context.Context, text string) error {
	if err := s.settings.MergeContent(ctx, bson.M{"contactText": text}); err != nil {
		return fmt.Errorf("сохранение контактов: %w", err)
	}
	s.logger.Info("Контент обновлён", slog.String("section", "contacts"))
	return nil
}
