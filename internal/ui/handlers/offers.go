// offers.go — раздел акций и скидок.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// dateLayout — формат дат в формах (input type="date").
const dateLayout = "2006-01-02"

// OffersHandler — обработчики раздела акций.
type OffersHandler struct {
	pageRenderer
	offers *service.OfferService
}

// NewOffersHandler создаёт новый OffersHandler.
func NewOffersHandler(offers *service.OfferService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *OffersHandler {
	return &OffersHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_offers")),
		},
		offers: offers,
	}
}

// offerFormData — данные формы акции.
type offerFormData struct {
	Action string
	Offer  *model.Offer
}

// Render — рендерер раздела offers для nav.Controller.
func (h *OffersHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	offers, err := h.offers.ListOffers(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки акций", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, view, "offers", offers)
}

// ShowNew — GET /admin/offers/new
func (h *OffersHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	offer := &model.Offer{
		DiscountType: model.DiscountPercentage,
		Active:       true,
		StartDate:    now,
		EndDate:      now.AddDate(0, 1, 0),
	}
	h.renderForm(w, r, "/admin/offers", offer)
}

// ShowEdit — GET /admin/offers/{id}/edit
func (h *OffersHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	offer, err := h.offers.GetOffer(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/offers", "common.not_found")
			return
		}
		h.logger.Error("Ошибка загрузки акции", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, r, "/admin/offers/"+id, offer)
}

// HandleCreate — POST /admin/offers
func (h *OffersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	offer, err := parseOfferForm(r)
	if err != nil {
		redirectError(w, r, "/admin/offers/new", "common.error")
		return
	}

	if err := h.offers.CreateOffer(r.Context(), offer); err != nil {
		h.logger.Error("Ошибка создания акции", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/offers/new", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/offers", "common.saved")
}

// HandleUpdate — POST /admin/offers/{id}
func (h *OffersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	offer, err := parseOfferForm(r)
	if err != nil {
		redirectError(w, r, "/admin/offers/"+id+"/edit", "common.error")
		return
	}

	if err := h.offers.UpdateOffer(r.Context(), id, offer); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/offers", "common.not_found")
			return
		}
		h.logger.Error("Ошибка обновления акции",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/offers/"+id+"/edit", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/offers", "common.saved")
}

// HandleDelete — POST /admin/offers/{id}/delete
func (h *OffersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.offers.DeleteOffer(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/offers", "common.not_found")
			return
		}
		h.logger.Error("Ошибка удаления акции",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/offers", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/offers", "common.saved")
}

func (h *OffersHandler) renderForm(w http.ResponseWriter, r *http.Request, action string, offer *model.Offer) {
	view := sessionView(r, authz.SectionOffers)
	h.render(w, r, view, "offer_form", &offerFormData{
		Action: action,
		Offer:  offer,
	})
}

// parseOfferForm разбирает форму акции.
func parseOfferForm(r *http.Request) (*model.Offer, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("разбор формы: %w", err)
	}

	value, err := strconv.ParseFloat(r.PostFormValue("discount_value"), 64)
	if err != nil {
		return nil, fmt.Errorf("размер скидки: %w", err)
	}
	start, err := time.Parse(dateLayout, r.PostFormValue("start_date"))
	if err != nil {
		return nil, fmt.Errorf("дата начала: %w", err)
	}
	end, err := time.Parse(dateLayout, r.PostFormValue("end_date"))
	if err != nil {
		return nil, fmt.Errorf("дата окончания: %w", err)
	}

	return &model.Offer{
		Name:          r.PostFormValue("name"),
		Description:   r.PostFormValue("description"),
		DiscountType:  r.PostFormValue("discount_type"),
		DiscountValue: value,
		CouponCode:    r.PostFormValue("coupon_code"),
		Active:        r.PostFormValue("active") != "",
		StartDate:     start,
		// Окно действует включительно до конца дня.
		EndDate: end.Add(24*time.Hour - time.Second),
	}, nil
}
