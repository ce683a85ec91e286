package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GTDGit/pricelist_api/internal/jalali"
	"github.com/GTDGit/pricelist_api/internal/metrics"
	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/repository"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// CatalogStore is the product side of the catalog store.
type CatalogStore interface {
	WithTx(ctx context.Context, fn func(repository.CatalogWriter) error) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListBrands(ctx context.Context) ([]models.Brand, error)
}

// ProductListCache holds the unfiltered product list. *cache.ProductCache
// implements it.
type ProductListCache interface {
	GetProducts(ctx context.Context) ([]models.Product, bool, error)
	SetProducts(ctx context.Context, products []models.Product) error
	InvalidateProducts(ctx context.Context) error
}

// CatalogService coordinates product writes and serves the product list.
type CatalogService struct {
	store CatalogStore
	cache ProductListCache
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(store CatalogStore, cache ProductListCache) *CatalogService {
	return &CatalogService{store: store, cache: cache}
}

// ProductInput is the create/update request body. Numeric fields are
// pointers so a missing value is told apart from zero.
type ProductInput struct {
	Name             string   `json:"name"`
	PartnerName      string   `json:"partnerName"`
	RegistrationDate string   `json:"registrationDate"`
	Price            *float64 `json:"price"`
	ProfitPercentage *float64 `json:"profitPercentage"`
	Description      *string  `json:"description"`
	BrandName        string   `json:"brandName"`
	LogoID           *int     `json:"logoId"`
}

// Upper bounds keep the sale price finite and serializable.
const (
	MaxPrice            = 1e15
	MaxProfitPercentage = 1e6
)

// ProductFields is a validated ProductInput.
type ProductFields struct {
	Name             string
	PartnerName      string
	RegistrationDate models.Date
	Price            float64
	ProfitPercentage float64
	Description      *string
	BrandName        string
	LogoID           int
}

// Validate normalizes the input and reports every offending field at once.
func (in *ProductInput) Validate() (*ProductFields, error) {
	verr := &utils.ValidationError{}
	f := &ProductFields{
		Name:        strings.TrimSpace(in.Name),
		PartnerName: strings.TrimSpace(in.PartnerName),
		BrandName:   strings.TrimSpace(in.BrandName),
	}

	if f.Name == "" {
		verr.Add("name", "name is required")
	}
	if f.PartnerName == "" {
		verr.Add("partnerName", "partnerName is required")
	}
	if f.BrandName == "" {
		verr.Add("brandName", "brandName is required")
	}

	if date, err := parseRegistrationDate(in.RegistrationDate); err != nil {
		verr.Add("registrationDate", err.Error())
	} else {
		f.RegistrationDate = date
	}

	switch {
	case in.Price == nil:
		verr.Add("price", "price is required")
	case *in.Price <= 0:
		verr.Add("price", "price must be greater than zero")
	case math.IsNaN(*in.Price) || *in.Price > MaxPrice:
		verr.Add("price", fmt.Sprintf("price must not exceed %.0f", MaxPrice))
	default:
		f.Price = *in.Price
	}

	switch {
	case in.ProfitPercentage == nil:
		verr.Add("profitPercentage", "profitPercentage is required")
	case *in.ProfitPercentage <= 0:
		verr.Add("profitPercentage", "profitPercentage must be greater than zero")
	case math.IsNaN(*in.ProfitPercentage) || *in.ProfitPercentage > MaxProfitPercentage:
		verr.Add("profitPercentage", fmt.Sprintf("profitPercentage must not exceed %.0f", MaxProfitPercentage))
	default:
		f.ProfitPercentage = *in.ProfitPercentage
	}

	switch {
	case in.LogoID == nil:
		verr.Add("logoId", "logoId is required")
	case *in.LogoID <= 0:
		verr.Add("logoId", "logoId must be a positive integer")
	default:
		f.LogoID = *in.LogoID
	}

	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			f.Description = &d
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseRegistrationDate accepts YYYY-MM-DD, RFC3339 and Jalali YYYY/MM/DD.
func parseRegistrationDate(raw string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, fmt.Errorf("registrationDate is required")
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return models.NewDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return models.NewDate(t), nil
	}
	if strings.Contains(raw, "/") {
		if d, err := jalali.Parse(raw); err == nil {
			return models.NewDate(d.Time()), nil
		}
	}
	return models.Date{}, fmt.Errorf("registrationDate must be a valid date (YYYY-MM-DD or Jalali YYYY/MM/DD, year %d-%d)", jalali.MinYear, jalali.MaxYear)
}

func (f *ProductFields) apply(p *models.Product, brandID int) {
	p.Name = f.Name
	p.PartnerName = f.PartnerName
	p.RegistrationDate = f.RegistrationDate
	p.Price = f.Price
	p.ProfitPercentage = f.ProfitPercentage
	p.Description = f.Description
	p.BrandID = brandID
	p.LogoID = f.LogoID
}

// CreateProduct validates in and stores it with its brand in one transaction.
func (s *CatalogService) CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error) {
	p, err := s.write(ctx, 0, in)
	metrics.RecordWrite("create", err)
	return p, err
}

// UpdateProduct replaces product id. Unknown ids return utils.ErrNotFound.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, in *ProductInput) (*models.Product, error) {
	p, err := s.write(ctx, id, in)
	metrics.RecordWrite("update", err)
	return p, err
}

// write runs brand resolution, logo check and the product write in one
// transaction. id 0 inserts.
func (s *CatalogService) write(ctx context.Context, id int, in *ProductInput) (*models.Product, error) {
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}

	var saved *models.Product
	err = s.store.WithTx(ctx, func(w repository.CatalogWriter) error {
		brand, err := w.EnsureBrand(ctx, fields.BrandName)
		if err != nil {
			return err
		}

		ok, err := w.LogoExists(ctx, fields.LogoID)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NewValidationError("logoId", "logoId does not reference an existing logo")
		}

		p := &models.Product{ID: id}
		fields.apply(p, brand.ID)
		if id == 0 {
			err = w.InsertProduct(ctx, p)
		} else {
			err = w.UpdateProduct(ctx, p)
		}
		if err != nil {
			return err
		}

		saved, err = w.GetProduct(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("product_id", saved.ID).Str("brand", saved.Brand.Name).Msg("Product saved")
	s.invalidate(ctx)
	return saved, nil
}

// DeleteProduct removes product id. Deleting an unknown id returns
// utils.ErrNotFound.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	err := s.store.DeleteProduct(ctx, id)
	metrics.RecordWrite("delete", err)
	if err != nil {
		return err
	}
	log.Info().Int("product_id", id).Msg("Product deleted")
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.store.ListBrands(ctx)
}

// ListFilter narrows and orders the product list.
type ListFilter struct {
	Search string
	Sort   string
	Order  string // asc | desc
}

// ListProducts returns the filtered list, newest first unless Sort is set.
func (s *CatalogService) ListProducts(ctx context.Context, f ListFilter) ([]models.Product, error) {
	all, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := filterProducts(all, f.Search)
	sortProducts(out, f.Sort, strings.EqualFold(f.Order, "desc"))
	return out, nil
}

func (s *CatalogService) allProducts(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.GetProducts(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Product cache read failed")
		case ok:
			metrics.CacheHits.Inc()
			return products, nil
		default:
			metrics.CacheMisses.Inc()
		}
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			log.Warn().Err(err).Msg("Product cache write failed")
		}
	}
	return products, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		log.Warn().Err(err).Msg("Product cache invalidation failed")
	}
}

func filterProducts(all []models.Product, search string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand.Name), q) ||
			strings.Contains(strings.ToLower(p.PartnerName), q) {
			out = append(out, p)
		}
	}
	return out
}

// sortProducts orders in place. Text columns use Persian collation. An
// unknown or empty key keeps the store order (newest first).
func sortProducts(products []models.Product, key string, desc bool) {
	col := collate.New(language.Persian, collate.IgnoreCase)
	text := func(get func(*models.Product) string) func(a, b *models.Product) int {
		return func(a, b *models.Product) int { return col.CompareString(get(a), get(b)) }
	}
	num := func(get func(*models.Product) float64) func(a, b *models.Product) int {
		return func(a, b *models.Product) int {
			x, y := get(a), get(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	stamp := func(get func(*models.Product) time.Time) func(a, b *models.Product) int {
		return func(a, b *models.Product) int { return get(a).Compare(get(b)) }
	}

	var cmp func(a, b *models.Product) int
	switch key {
	case "name":
		cmp = text(func(p *models.Product) string { return p.Name })
	case "brand":
		cmp = text(func(p *models.Product) string { return p.Brand.Name })
	case "logo":
		cmp = text(func(p *models.Product) string { return p.Logo.Name })
	case "partnerName":
		cmp = text(func(p *models.Product) string { return p.PartnerName })
	case "registrationDate":
		cmp = stamp(func(p *models.Product) time.Time { return p.RegistrationDate.Time })
	case "price":
		cmp = num(func(p *models.Product) float64 { return p.Price })
	case "salePrice":
		cmp = num((*models.Product).SalePrice)
	case "createdAt":
		cmp = stamp(func(p *models.Product) time.Time { return p.CreatedAt })
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		c := cmp(&products[i], &products[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
