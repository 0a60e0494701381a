// products.go — раздел товаров: список, формы создания и редактирования,
// импорт из CSV.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

// maxUploadSize — максимальный размер multipart-формы (изображение или CSV).
const maxUploadSize = 10 << 20

// ProductsHandler — обработчики раздела товаров.
type ProductsHandler struct {
	pageRenderer
	catalog *service.CatalogService
}

// NewProductsHandler создаёт новый ProductsHandler.
func NewProductsHandler(catalog *service.CatalogService, tmpl *templates.Templates, bundle *i18n.Bundle, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{
		pageRenderer: pageRenderer{
			tmpl:   tmpl,
			bundle: bundle,
			logger: logger.With(slog.String("component", "ui_products")),
		},
		catalog: catalog,
	}
}

// productFormData — данные формы товара.
type productFormData struct {
	Action     string
	Product    *model.Product
	Categories []*model.Category
}

// Render — рендерер раздела products для nav.Controller.
func (h *ProductsHandler) Render(w http.ResponseWriter, r *http.Request, view *nav.SessionView) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки товаров", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Импорт добавляет к редиректу счётчики: показываем итог как flash.
	if imported := r.URL.Query().Get("imported"); imported != "" {
		n, _ := strconv.Atoi(imported)
		m, _ := strconv.Atoi(r.URL.Query().Get("skipped"))
		lang := i18n.LangFromContext(r.Context())
		h.renderPage(w, r, view, "products", products,
			h.bundle.Translatef(lang, "products.import_done", n, m), "")
		return
	}

	h.render(w, r, view, "products", products)
}

// ShowNew — GET /admin/products/new
func (h *ProductsHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "/admin/products", &model.Product{Available: true})
}

// ShowEdit — GET /admin/products/{id}/edit
func (h *ProductsHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/products", "common.not_found")
			return
		}
		h.logger.Error("Ошибка загрузки товара", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, r, "/admin/products/"+id, product)
}

// HandleCreate — POST /admin/products
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	product, imageName, image, err := h.parseProductForm(r)
	if err != nil {
		redirectError(w, r, "/admin/products/new", "common.error")
		return
	}
	if image != nil {
		defer image.Close()
	}

	if err := h.catalog.CreateProduct(r.Context(), product, imageName, readerOrNil(image)); err != nil {
		h.logger.Error("Ошибка создания товара", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/products/new", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/products", "common.saved")
}

// HandleUpdate — POST /admin/products/{id}
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, imageName, image, err := h.parseProductForm(r)
	if err != nil {
		redirectError(w, r, "/admin/products/"+id+"/edit", "common.error")
		return
	}
	if image != nil {
		defer image.Close()
	}

	if err := h.catalog.UpdateProduct(r.Context(), id, product, imageName, readerOrNil(image)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/products", "common.not_found")
			return
		}
		h.logger.Error("Ошибка обновления товара",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/products/"+id+"/edit", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/products", "common.saved")
}

// HandleDelete — POST /admin/products/{id}/delete
func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectError(w, r, "/admin/products", "common.not_found")
			return
		}
		h.logger.Error("Ошибка удаления товара",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		redirectError(w, r, "/admin/products", "common.error")
		return
	}

	redirectFlash(w, r, "/admin/products", "common.saved")
}

// HandleImport — POST /admin/products/import
// Принимает CSV-файл; итог импорта показывается как flash на списке товаров.
func (h *ProductsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		redirectError(w, r, "/admin/products", "common.error")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		redirectError(w, r, "/admin/products", "common.error")
		return
	}
	defer file.Close()

	result, err := h.catalog.ImportProductsCSV(r.Context(), file)
	if err != nil {
		h.logger.Error("Ошибка импорта CSV", slog.String("error", err.Error()))
		redirectError(w, r, "/admin/products", "common.error")
		return
	}

	for _, line := range result.Errors {
		h.logger.Warn("Строка CSV пропущена", slog.String("reason", line))
	}

	http.Redirect(w, r,
		fmt.Sprintf("/admin/products?imported=%d&skipped=%d", result.Imported, result.Skipped),
		http.StatusSeeOther,
	)
}

// renderForm показывает форму товара со списком категорий для селекта.
func (h *ProductsHandler) renderForm(w http.ResponseWriter, r *http.Request, action string, product *model.Product) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки категорий", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view := sessionView(r, authz.SectionProducts)
	h.render(w, r, view, "product_form", &productFormData{
		Action:     action,
		Product:    product,
		Categories: categories,
	})
}

// parseProductForm разбирает multipart-форму товара.
// Возвращённый файл может быть nil, если изображение не загружали.
func (h *ProductsHandler) parseProductForm(r *http.Request) (*model.Product, string, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", nil, fmt.Errorf("разбор формы: %w", err)
	}

	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil {
		return nil, "", nil, fmt.Errorf("цена: %w", err)
	}
	stock, err := strconv.Atoi(r.PostFormValue("stock"))
	if err != nil {
		return nil, "", nil, fmt.Errorf("остаток: %w", err)
	}

	product := &model.Product{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		Price:       price,
		Stock:       stock,
		Available:   r.PostFormValue("available") != "",
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return product, "", nil, nil
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("файл изображения: %w", err)
	}

	return product, header.Filename, file, nil
}

// readerOrNil приводит multipart.File к io.Reader, сохраняя nil.
// Нетипизированный nil нужен сервису как признак «без изображения».
func readerOrNil(file multipart.File) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
