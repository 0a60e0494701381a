// catalog.go — сервис каталога: товары, категории, изображения,
// импорт товаров из CSV.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/akolesov/lavka-admin/internal/assetstore"
	"github.com/akolesov/lavka-admin/internal/domain/model"
	"github.com/akolesov/lavka-admin/internal/registry"
)

// ProductStore — хранилище товаров.
type ProductStore interface {
	List(ctx context.Context) ([]*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	CreateMany(ctx context.Context, products []*model.Product) error
	Update(ctx context.Context, id string, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryStore — хранилище категорий.
type CategoryStore interface {
	List(ctx context.Context) ([]*model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id string, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ImageStore — внешнее хранилище изображений товаров.
type ImageStore interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*assetstore.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// StatsInvalidator — сброс кешированных агрегатов после изменения данных.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// CatalogService — сервис каталога товаров.
type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	images     ImageStore
	stats      StatsInvalidator
	logger     *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
// images и stats могут быть nil: без хранилища изображений товары
// сохраняются без картинок, без кеша — просто нет инвалидации.
func NewCatalogService(
	products ProductStore,
	categories CategoryStore,
	images ImageStore,
	stats StatsInvalidator,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		images:     images,
		stats:      stats,
		logger:     logger.With(slog.String("component", "catalog_service")),
	}
}

// ListProducts возвращает все товары (новые первыми).
func (s *CatalogService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка товаров: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение товара: %w", err)
	}
	return product, nil
}

// CreateProduct создаёт товар, при наличии image загружает изображение.
// image может быть nil — товар без картинки.
func (s *CatalogService) CreateProduct(ctx context.Context, product *model.Product, imageName string, image io.Reader) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if image != nil && s.images != nil {
		uploaded, err := s.images.Upload(ctx, imageName, image)
		if err != nil {
			return fmt.Errorf("загрузка изображения товара: %w", err)
		}
		product.Image = uploaded.SecureURL
		product.ImagePublicID = uploaded.PublicID
	}

	if err := s.products.Create(ctx, product); err != nil {
		return fmt.Errorf("создание товара: %w", err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("Товар создан",
		slog.String("id", product.ID.Hex()),
		slog.String("name", product.Name),
	)
	return nil
}

// UpdateProduct обновляет товар. Новое изображение заменяет старое:
// старое удаляется из хранилища после успешной загрузки нового.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, product *model.Product, imageName string, image io.Reader) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	product.Image = existing.Image
	product.ImagePublicID = existing.ImagePublicID

	if image != nil && s.images != nil {
		uploaded, err := s.images.Upload(ctx, imageName, image)
		if err != nil {
			return fmt.Errorf("загрузка изображения товара: %w", err)
		}

		if existing.ImagePublicID != "" {
			if err := s.images.Destroy(ctx, existing.ImagePublicID); err != nil {
				s.logger.Warn("Не удалось удалить старое изображение",
					slog.String("public_id", existing.ImagePublicID),
					slog.String("error", err.Error()),
				)
			}
		}

		product.Image = uploaded.SecureURL
		product.ImagePublicID = uploaded.PublicID
	}

	if err := s.products.Update(ctx, id, product); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление товара: %w", err)
	}

	s.invalidateStats(ctx)
	return nil
}

// DeleteProduct удаляет товар и его изображение из хранилища.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление товара: %w", err)
	}

	if product.ImagePublicID != "" && s.images != nil {
		if err := s.images.Destroy(ctx, product.ImagePublicID); err != nil {
			s.logger.Warn("Не удалось удалить изображение товара",
				slog.String("public_id", product.ImagePublicID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.invalidateStats(ctx)
	s.logger.Info("Товар удалён", slog.String("id", id))
	return nil
}

// ImportResult — итог импорта товаров из CSV.
type ImportResult struct {
	// Imported — количество созданных товаров.
	Imported int
	// Skipped — количество пропущенных строк с ошибками.
	Skipped int
	// Errors — описания ошибок по строкам (для показа на форме).
	Errors []string
}

// csvColumns — обязательный заголовок CSV-файла импорта.
var csvColumns = []string{"name", "description", "category", "price", "stock"}

// ImportProductsCSV читает CSV и создаёт товары одной вставкой.
// Формат: name,description,category,price,stock. Строки с ошибками
// пропускаются и попадают в отчёт, валидные импортируются.
func (s *CatalogService) ImportProductsCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: пустой или нечитаемый CSV", ErrValidation)
	}
	if !validCSVHeader(header) {
		return nil, fmt.Errorf("%w: ожидается заголовок %s", ErrValidation, strings.Join(csvColumns, ","))
	}

	result := &ImportResult{}
	var products []*model.Product

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", line, err))
			continue
		}

		product, err := productFromCSV(record)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", line, err))
			continue
		}
		products = append(products, product)
	}

	if len(products) > 0 {
		if err := s.products.CreateMany(ctx, products); err != nil {
			return nil, fmt.Errorf("импорт товаров: %w", err)
		}
		result.Imported = len(products)
		s.invalidateStats(ctx)
	}

	s.logger.Info("Импорт товаров из CSV завершён",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ListCategories возвращает все категории в порядке отображения.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка категорий: %w", err)
	}
	return categories, nil
}

// GetCategory возвращает категорию по идентификатору.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return category, nil
}

// CreateCategory создаёт категорию.
func (s *CatalogService) CreateCategory(ctx context.Context, category *model.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: имя категории обязательно", ErrValidation)
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return fmt.Errorf("создание категории: %w", err)
	}
	return nil
}

// UpdateCategory обновляет категорию.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, category *model.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: имя категории обязательно", ErrValidation)
	}
	if err := s.categories.Update(ctx, id, category); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление категории: %w", err)
	}
	return nil
}

// DeleteCategory удаляет категорию.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление категории: %w", err)
	}
	return nil
}

// invalidateStats сбрасывает кеш агрегатов дашборда.
func (s *CatalogService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

// validateProduct проверяет обязательные поля товара.
func validateProduct(p *model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: имя товара обязательно", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: цена не может быть отрицательной", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: остаток не может быть отрицательным", ErrValidation)
	}
	return nil
}

// validCSVHeader сверяет заголовок CSV с ожидаемым.
func validCSVHeader(header []string) bool {
	if len(header) != len(csvColumns) {
		return false
	}
	for i, col := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return false
		}
	}
	return true
}

// productFromCSV собирает товар из строки CSV (name,description,category,price,stock).
func productFromCSV(record []string) (*model.Product, error) {
	if len(record) != len(csvColumns) {
		return nil, fmt.Errorf("ожидается %d колонок, получено %d", len(csvColumns), len(record))
	}

	name := strings.TrimSpace(record[0])
	if name == "" {
		return nil, errors.New("имя товара обязательно")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("некорректная цена %q", record[3])
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("некорректный остаток %q", record[4])
	}

	return &model.Product{
		Name:        name,
		Description: strings.TrimSpace(record[1]),
		Category:    strings.TrimSpace(record[2]),
		Price:       price,
		Stock:       stock,
		Available:   stock > 0,
	}, nil
}
