package services

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"beststore/internal/domain"
	applog "beststore/internal/log"
	"beststore/internal/media"
)

// ProductFields carries the caller-editable fields of a product.
type ProductFields struct {
	Name        string
	Brand       string
	Category    string
	Description string
	Price       float64
}

// ProductStore is the record side of the catalog: a durable key-value store
// keyed by product id.
type ProductStore interface {
	Create(p domain.Product) (int64, error)
	Get(id int64) (domain.Product, error)
	List() ([]domain.Product, error)
	Update(id int64, p domain.Product) error
	Delete(id int64) error
}

// ImageStore is the file side of the catalog.
type ImageStore interface {
	Put(now time.Time, originalName string, content []byte) (string, error)
	Delete(filename string) error
	Exists(filename string) bool
}

// CatalogService coordinates product records and their image files so that a
// committed record always references a stored file. File operations run before
// the corresponding record mutation: a failed call may leave a record with a
// slightly stale image reference, never a record pointing at a file that was
// never written.
type CatalogService struct {
	Prods  ProductStore
	Images ImageStore

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewCatalogService(prods ProductStore, images ImageStore) *CatalogService {
	return &CatalogService{Prods: prods, Images: images, locks: make(map[int64]*sync.Mutex)}
}

// lock returns the per-id mutex, so same-id mutations are serialized while
// different ids proceed independently. Entries are never reclaimed; the map
// grows with the number of distinct ids ever touched.
func (s *CatalogService) lock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

func (s *CatalogService) ListProducts() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) GetProductForEdit(id int64) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, &RepositoryError{Op: "get", ID: id, Err: err}
	}
	return p, nil
}

// CreateProduct stores the image first and commits the record second. If the
// record commit fails, the freshly written file is removed best-effort so no
// orphan survives a failed create.
func (s *CatalogService) CreateProduct(f ProductFields, image []byte, originalName string) (int64, error) {
	if len(image) == 0 {
		return 0, &ValidationError{Field: "image", Reason: "image required"}
	}
	if err := f.validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	stored, err := s.Images.Put(now, originalName, image)
	if err != nil {
		return 0, &StorageError{Op: "put", Filename: originalName, Err: err}
	}

	p := domain.Product{
		Name:        f.Name,
		Brand:       f.Brand,
		Category:    f.Category,
		Description: f.Description,
		Price:       f.Price,
		ImageFile:   stored,
		CreatedAt:   now.Format(time.RFC3339Nano),
	}

	id, err := s.Prods.Create(p)
	if err != nil {
		rerr := &RepositoryError{Op: "create", Err: err, OrphanFile: stored}
		if cerr := s.Images.Delete(stored); cerr != nil {
			rerr.CleanupErr = cerr
			applog.OpError("catalog.create.cleanup.fail", cerr, map[string]any{"file": stored})
		}
		return 0, rerr
	}
	return id, nil
}

// UpdateProduct applies field changes and, when image is non-empty, swaps the
// stored file: the old file is deleted, the new one written, and the record
// committed last. A missing old file is tolerated. A failed record commit
// leaves the swap in place (the record keeps its previous image reference,
// which may by then name a removed file).
func (s *CatalogService) UpdateProduct(id int64, f ProductFields, image []byte, originalName string) error {
	if err := f.validate(); err != nil {
		return err
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return &RepositoryError{Op: "get", ID: id, Err: err}
	}

	if len(image) > 0 {
		if derr := s.Images.Delete(p.ImageFile); derr != nil {
			if !errors.Is(derr, media.ErrFileNotFound) {
				return &StorageError{Op: "delete", Filename: p.ImageFile, Err: derr}
			}
			applog.OpWarn("catalog.update.old_image.missing", map[string]any{"id": id, "file": p.ImageFile})
		}

		stored, perr := s.Images.Put(time.Now().UTC(), originalName, image)
		if perr != nil {
			return &StorageError{Op: "put", Filename: originalName, Err: perr}
		}
		p.ImageFile = stored
	}

	p.Name = f.Name
	p.Brand = f.Brand
	p.Category = f.Category
	p.Description = f.Description
	p.Price = f.Price

	if err := s.Prods.Update(id, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return &RepositoryError{Op: "update", ID: id, Err: err}
	}
	return nil
}

// DeleteProduct removes the image file first and the record second. A missing
// file is tolerated; a record delete failure after the file went leaves a
// stale record, which is logged as a consistency warning and surfaced.
func (s *CatalogService) DeleteProduct(id int64) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return &RepositoryError{Op: "get", ID: id, Err: err}
	}

	if derr := s.Images.Delete(p.ImageFile); derr != nil {
		if !errors.Is(derr, media.ErrFileNotFound) {
			return &StorageError{Op: "delete", Filename: p.ImageFile, Err: derr}
		}
		applog.OpWarn("catalog.delete.image.missing", map[string]any{"id": id, "file": p.ImageFile})
	}

	if err := s.Prods.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		applog.OpError("catalog.delete.stale_record", err, map[string]any{"id": id, "file": p.ImageFile})
		return &RepositoryError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

func (f ProductFields) validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(f.Brand) == "":
		return &ValidationError{Field: "brand", Reason: "required"}
	case strings.TrimSpace(f.Category) == "":
		return &ValidationError{Field: "category", Reason: "required"}
	case strings.TrimSpace(f.Description) == "":
		return &ValidationError{Field: "description", Reason: "required"}
	case f.Price < 0:
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}
