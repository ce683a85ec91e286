// Package memstore is an in-memory implementation of the admin and catalog
// stores, used only by the service and handler tests; the server binary
// always runs on the postgres repositories. Transactions snapshot the whole
// store and restore it on error, giving the same all-or-nothing behaviour.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/repository"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// Store holds admin users, brands, logos and products in maps.
type Store struct {
	mu sync.Mutex
	state

	now func() time.Time
}

type state struct {
	admins   map[string]models.AdminUser
	brands   map[int]models.Brand
	logos    map[int]models.Logo
	products map[int]models.Product
	nextID   int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		state: state{
			admins:   map[string]models.AdminUser{},
			brands:   map[int]models.Brand{},
			logos:    map[int]models.Logo{},
			products: map[int]models.Product{},
		},
		now: time.Now,
	}
}

func (s *state) clone() state {
	c := state{
		admins:   make(map[string]models.AdminUser, len(s.admins)),
		brands:   make(map[int]models.Brand, len(s.brands)),
		logos:    make(map[int]models.Logo, len(s.logos)),
		products: make(map[int]models.Product, len(s.products)),
		nextID:   s.nextID,
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.brands {
		c.brands[k] = v
	}
	for k, v := range s.logos {
		c.logos[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

func (s *state) id() int {
	s.nextID++
	return s.nextID
}

// GetByUsername implements the admin credential lookup.
func (s *Store) GetByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.admins[username]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}

// UpsertPassword creates the admin or replaces its hash.
func (s *Store) UpsertPassword(_ context.Context, username, passwordHash string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	u, ok := s.admins[username]
	if !ok {
		u = models.AdminUser{ID: s.id(), Username: username, CreatedAt: now}
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = now
	s.admins[username] = u
	return &u, nil
}

// AddLogo inserts a logo directly, bypassing file storage. Test fixtures use it.
func (s *Store) AddLogo(name, filePath string) models.Logo {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := models.Logo{ID: s.id(), Name: name, FilePath: filePath, CreatedAt: s.now()}
	s.logos[l.ID] = l
	return l
}

// BrandCount returns how many brands carry name.
func (s *Store) BrandCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.brands {
		if b.Name == name {
			n++
		}
	}
	return n
}

// ProductCount returns the number of stored products.
func (s *Store) ProductCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// WithTx runs fn with exclusive access to the store and restores the
// previous state if fn fails.
func (s *Store) WithTx(_ context.Context, fn func(repository.CatalogWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&writer{s: s}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// ListProducts returns every product, newest first.
func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, s.expand(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetProduct returns utils.ErrNotFound for unknown ids.
func (s *Store) GetProduct(_ context.Context, id int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProduct(id)
}

// DeleteProduct returns utils.ErrNotFound for unknown ids.
func (s *Store) DeleteProduct(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

// ListBrands returns brands ordered by name.
func (s *Store) ListBrands(_ context.Context) ([]models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListLogos returns logos ordered by name.
func (s *Store) ListLogos(_ context.Context) ([]models.Logo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Logo, 0, len(s.logos))
	for _, l := range s.logos {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CreateLogo returns utils.ErrConflict when the name is taken.
func (s *Store) CreateLogo(_ context.Context, logo *models.Logo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logos {
		if l.Name == logo.Name {
			return fmt.Errorf("logo %q: %w", logo.Name, utils.ErrConflict)
		}
	}
	logo.ID = s.id()
	logo.CreatedAt = s.now()
	s.logos[logo.ID] = *logo
	return nil
}

func (s *Store) getProduct(id int) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	out := s.expand(p)
	return &out, nil
}

func (s *Store) expand(p models.Product) models.Product {
	p.Brand = s.brands[p.BrandID]
	p.Logo = s.logos[p.LogoID]
	return p
}

// writer is the CatalogWriter used inside WithTx; the store lock is already held.
type writer struct {
	s *Store
}

func (w *writer) EnsureBrand(_ context.Context, name string) (*models.Brand, error) {
	for _, b := range w.s.brands {
		if b.Name == name {
			return &b, nil
		}
	}
	b := models.Brand{ID: w.s.id(), Name: name}
	w.s.brands[b.ID] = b
	return &b, nil
}

func (w *writer) LogoExists(_ context.Context, id int) (bool, error) {
	_, ok := w.s.logos[id]
	return ok, nil
}

func (w *writer) InsertProduct(_ context.Context, p *models.Product) error {
	if err := w.checkRefs(p); err != nil {
		return err
	}
	now := w.s.now()
	p.ID = w.s.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	w.s.products[p.ID] = stripRefs(*p)
	return nil
}

func (w *writer) UpdateProduct(_ context.Context, p *models.Product) error {
	existing, ok := w.s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %d: %w", p.ID, utils.ErrNotFound)
	}
	if err := w.checkRefs(p); err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = w.s.now()
	w.s.products[p.ID] = stripRefs(*p)
	return nil
}

func (w *writer) GetProduct(_ context.Context, id int) (*models.Product, error) {
	return w.s.getProduct(id)
}

func (w *writer) checkRefs(p *models.Product) error {
	if _, ok := w.s.brands[p.BrandID]; !ok {
		return fmt.Errorf("brand %d does not exist", p.BrandID)
	}
	if _, ok := w.s.logos[p.LogoID]; !ok {
		return utils.NewValidationError("logoId", "logo does not exist")
	}
	if p.Price <= 0 || p.ProfitPercentage <= 0 || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("check constraint violated for product %q", p.Name)
	}
	return nil
}

func stripRefs(p models.Product) models.Product {
	p.Brand = models.Brand{}
	p.Logo = models.Logo{}
	return p
}
