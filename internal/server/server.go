// Пакет server — HTTP-сервер панели администратора с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/akolesov/lavka-admin/internal/api/handlers"
	apimiddleware "github.com/akolesov/lavka-admin/internal/api/middleware"
	"github.com/akolesov/lavka-admin/internal/config"
	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/ui/handlers"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	uimiddleware "github.com/akolesov/lavka-admin/internal/ui/middleware"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/static"
)

// Deps — собранные обработчики и middleware для маршрутизации.
type Deps struct {
	// --- Admin UI ---

	UIAuth     *uimiddleware.UIAuth
	Nav        *nav.Controller
	Auth       *handlers.AuthHandler
	Products   *handlers.ProductsHandler
	Categories *handlers.CategoriesHandler
	Orders     *handlers.OrdersHandler
	Customers  *handlers.CustomersHandler
	Offers     *handlers.OffersHandler
	Content    *handlers.ContentHandler
	Settings   *handlers.SettingsHandler

	// --- JSON API ---

	// JWTAuth может быть nil: тогда /api/v1 не монтируется.
	JWTAuth *apimiddleware.JWTAuth
	API     *apihandlers.APIHandler

	Health *apihandlers.HealthHandler
}

// Server — HTTP-сервер панели администратора.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, deps *Deps, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(apimiddleware.MetricsMiddleware())
	router.Use(apimiddleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	// Health и metrics — публичные, проверяются Kubernetes напрямую.
	router.Get("/health/live", deps.Health.HealthLive)
	router.Get("/health/ready", deps.Health.HealthReady)
	router.Get("/metrics", deps.Health.GetMetrics)

	// JSON API для интеграций.
	if deps.JWTAuth != nil {
		router.Route("/api/v1", func(r chi.Router) {
			r.Use(deps.JWTAuth.Middleware())

			r.Get("/me", deps.API.GetMe)
			r.Get("/products", deps.API.ListProducts)
			r.Get("/products/{id}", deps.API.GetProduct)
			r.Get("/orders", deps.API.ListOrders)
			r.Get("/orders/{id}", deps.API.GetOrder)
			r.Get("/offers/active", deps.API.ListActiveOffers)
		})
	}

	// Admin UI.
	router.Route("/admin", func(r chi.Router) {
		// Публичные маршруты: вход, смена языка, статика.
		r.Get("/login", deps.Auth.ShowLogin)
		r.Post("/login", deps.Auth.HandleLogin)
		r.Post("/logout", deps.Auth.HandleLogout)
		r.Post("/set-language", handlers.HandleSetLanguage)
		r.Handle("/static/*", http.StripPrefix("/admin/static/", http.FileServer(static.FileSystem())))

		// Страницы и действия — только с валидной сессией.
		// Каждая группа действий дополнительно закрыта проверкой раздела:
		// роль без раздела в AllowedSections не может вызвать его действия,
		// даже если собрала POST вручную.
		r.Group(func(r chi.Router) {
			r.Use(deps.UIAuth.Middleware())

			// Товары
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionProducts))
				r.Get("/products/new", deps.Products.ShowNew)
				r.Post("/products", deps.Products.HandleCreate)
				r.Post("/products/import", deps.Products.HandleImport)
				r.Get("/products/{id}/edit", deps.Products.ShowEdit)
				r.Post("/products/{id}", deps.Products.HandleUpdate)
				r.Post("/products/{id}/delete", deps.Products.HandleDelete)
			})

			// Категории
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionCategories))
				r.Post("/categories", deps.Categories.HandleCreate)
				r.Post("/categories/{id}/delete", deps.Categories.HandleDelete)
			})

			// Заказы
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionOrders))
				r.Get("/orders/{id}", deps.Orders.ShowDetail)
				r.Post("/orders/{id}/status", deps.Orders.HandleStatus)
			})

			// Покупатели
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionUsers))
				r.Post("/users/{id}/block", deps.Customers.HandleBlock)
				r.Post("/users/{id}/unblock", deps.Customers.HandleUnblock)
			})

			// Акции
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionOffers))
				r.Get("/offers/new", deps.Offers.ShowNew)
				r.Post("/offers", deps.Offers.HandleCreate)
				r.Get("/offers/{id}/edit", deps.Offers.ShowEdit)
				r.Post("/offers/{id}", deps.Offers.HandleUpdate)
				r.Post("/offers/{id}/delete", deps.Offers.HandleDelete)
			})

			// Контент
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionContent))
				r.Post("/content/banner", deps.Content.HandleBanner)
				r.Post("/content/about", deps.Content.HandleAbout)
				r.Post("/content/contacts", deps.Content.HandleContacts)
			})

			// Настройки
			r.Group(func(r chi.Router) {
				r.Use(deps.UIAuth.RequireSection(authz.SectionSettings))
				r.Post("/settings/store", deps.Settings.HandleStore)
				r.Post("/settings/shipping", deps.Settings.HandleShipping)
				r.Post("/settings/payment", deps.Settings.HandlePayment)
				r.Post("/settings/social", deps.Settings.HandleSocial)
			})

			// Страницы разделов — через контроллер навигации.
			// Недоступный раздел молча уводится на dashboard.
			r.Get("/{section}", sectionHandler(deps.Nav))
			r.Get("/", redirectTo("/admin/dashboard"))
		})
	})

	router.Get("/", redirectTo("/admin/dashboard"))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// sectionHandler направляет GET /admin/{section} в рендерер раздела.
// Роль для SessionView берётся из сессии, уже перепроверенной по реестру
// UIAuth middleware на этом же запросе.
func sectionHandler(controller *nav.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := uimiddleware.SessionFromContext(r.Context())
		if session == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		view := nav.NewSessionView(
			session.UID,
			session.Username,
			session.Email,
			session.Role,
			chi.URLParam(r, "section"),
		)
		controller.NavigateTo(w, r, view)
	}
}

// redirectTo возвращает handler с постоянным redirect на target.
func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
