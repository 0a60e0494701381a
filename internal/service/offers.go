// offers.go — сервис акций и скидок.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// OfferStore — хранилище акций.
type OfferStore interface {
	List(ctx context.Context) ([]*model.Offer, error)
	Get(ctx context.Context, id string) (*model.Offer, error)
	Create(ctx context.Context, offer *model.Offer) error
	Update(ctx context.Context, id string, offer *model.Offer) error
	Delete(ctx context.Context, id string) error
}

// OfferService — сервис акций и скидок.
type OfferService struct {
	offers OfferStore
	logger *slog.Logger
}

// NewOfferService создаёт сервис акций.
func NewOfferService(offers OfferStore, logger *slog.Logger) *OfferService {
	return &OfferService{
		offers: offers,
		logger: logger.With(slog.String("component", "offer_service")),
	}
}

// ListOffers возвращает все акции.
func (s *OfferService) ListOffers(ctx context.Context) ([]*model.Offer, error) {
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка акций: %w", err)
	}
	return offers, nil
}

// GetOffer возвращает акцию по идентификатору.
func (s *OfferService) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	offer, err := s.offers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение акции: %w", err)
	}
	return offer, nil
}

// CreateOffer создаёт акцию.
func (s *OfferService) CreateOffer(ctx context.Context, offer *model.Offer) error {
	if err := validateOffer(offer); err != nil {
		return err
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return fmt.Errorf("создание акции: %w", err)
	}
	s.logger.Info("Акция создана", slog.String("name", offer.Name))
	return nil
}

// UpdateOffer обновляет акцию.
func (s *OfferService) UpdateOffer(ctx context.Context, id string, offer *model.Offer) error {
	if err := validateOffer(offer); err != nil {
		return err
	}
	if err := s.offers.Update(ctx, id, offer); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление акции: %w", err)
	}
	return nil
}

// DeleteOffer удаляет акцию.
func (s *OfferService) DeleteOffer(ctx context.Context, id string) error {
	if err := s.offers.Delete(ctx, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление акции: %w", err)
	}
	return nil
}

// ActiveOffers возвращает акции, действующие в момент now.
func (s *OfferService) ActiveOffers(ctx context.Context, now time.Time) ([]*model.Offer, error) {
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка акций: %w", err)
	}

	active := make([]*model.Offer, 0, len(offers))
	for _, o := range offers {
		if o.InWindow(now) {
			active = append(active, o)
		}
	}
	return active, nil
}

// validateOffer проверяет обязательные поля акции.
func validateOffer(o *model.Offer) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: имя акции обязательно", ErrValidation)
	}
	if o.DiscountType != model.DiscountPercentage && o.DiscountType != model.DiscountFixed {
		return fmt.Errorf("%w: тип скидки %q недопустим", ErrValidation, o.DiscountType)
	}
	if o.DiscountValue <= 0 {
		return fmt.Errorf("%w: размер скидки должен быть положительным", ErrValidation)
	}
	if o.DiscountType == model.DiscountPercentage && o.DiscountValue > 100 {
		return fmt.Errorf("%w: процентная скидка не может превышать 100", ErrValidation)
	}
	if o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("%w: дата окончания раньше даты начала", ErrValidation)
	}
	return nil
}
