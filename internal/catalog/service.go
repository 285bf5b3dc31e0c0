// Package catalog implements product management on top of the products
// repository and the image store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"vitrina/internal/models"
)

// ErrInvalidInput matches every InputError.
var ErrInvalidInput = errors.New("invalid input")

// InputError is a form problem that is shown back to the admin.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Images is the part of the image store the catalog needs.
type Images interface {
	Check(filename string) error
	Save(fh *multipart.FileHeader) (string, error)
	RemoveAll(urls []string) error
}

// Draft holds the editable text fields of a product.
type Draft struct {
	Name        string
	Description string
	Price       int64
}

func (d Draft) validate() (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if d.Name == "" {
		return d, &InputError{Field: "name", Message: "укажите название товара"}
	}
	if d.Price < 0 {
		return d, &InputError{Field: "price", Message: "цена не может быть отрицательной"}
	}
	return d, nil
}

type Service struct {
	repo   *models.ProductsRepository
	images Images
}

func NewService(repo *models.ProductsRepository, images Images) *Service {
	return &Service{repo: repo, images: images}
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct inserts the product and one image row per upload. The
// first upload becomes the main image. On any failure the rows are rolled
// back and the files written so far are removed.
func (s *Service) CreateProduct(ctx context.Context, d Draft, files []*multipart.FileHeader) (*models.Product, error) {
	d, err := d.validate()
	if err != nil {
		return nil, err
	}
	files = selected(files)
	if err := s.checkAll(files); err != nil {
		return nil, err
	}

	product := &models.Product{Name: d.Name, Description: d.Description, Price: d.Price}
	var written []string
	err = s.repo.Transaction(ctx, func(tx *models.ProductsRepository) error {
		if err := tx.Create(ctx, product); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		urls, err := s.attach(ctx, tx, product.ID, files, &written)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return nil
		}
		product.MainImage = urls[0]
		return tx.Update(ctx, product)
	})
	if err != nil {
		s.cleanup(ctx, written)
		return nil, err
	}

	slog.InfoContext(ctx, "product created", "product_id", product.ID, "images", len(written))
	return s.repo.GetByID(ctx, product.ID)
}

// UpdateProduct rewrites the text fields, drops the images listed in
// deleteIDs and attaches new uploads. main_image is left as it was.
// Files of dropped images are removed only after the commit.
func (s *Service) UpdateProduct(ctx context.Context, id uint, d Draft, deleteIDs []uint, files []*multipart.FileHeader) (*models.Product, error) {
	d, err := d.validate()
	if err != nil {
		return nil, err
	}
	files = selected(files)
	if err := s.checkAll(files); err != nil {
		return nil, err
	}

	var written, dropped []string
	err = s.repo.Transaction(ctx, func(tx *models.ProductsRepository) error {
		product, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		removed, err := tx.DeleteImages(ctx, id, deleteIDs)
		if err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		for _, img := range removed {
			dropped = append(dropped, img.URL)
		}
		if _, err := s.attach(ctx, tx, id, files, &written); err != nil {
			return err
		}
		product.Name = d.Name
		product.Description = d.Description
		product.Price = d.Price
		return tx.Update(ctx, product)
	})
	if err != nil {
		s.cleanup(ctx, written)
		return nil, err
	}
	s.cleanup(ctx, dropped)

	slog.InfoContext(ctx, "product updated", "product_id", id, "added", len(written), "removed", len(dropped))
	return s.repo.GetByID(ctx, id)
}

// DeleteProduct removes the product with its image rows in one transaction,
// then the image files.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	var images []models.ProductImage
	err := s.repo.Transaction(ctx, func(tx *models.ProductsRepository) error {
		var err error
		images, err = tx.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	s.cleanup(ctx, urls)

	slog.InfoContext(ctx, "product deleted", "product_id", id, "images", len(urls))
	return nil
}

// attach saves each upload and records it as an image of productID.
// Every written URL is appended to *written, even when a later step fails.
func (s *Service) attach(ctx context.Context, tx *models.ProductsRepository, productID uint, files []*multipart.FileHeader, written *[]string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.images.Save(fh)
		if err != nil {
			return nil, fmt.Errorf("save image %q: %w", fh.Filename, err)
		}
		*written = append(*written, url)
		if err := tx.AddImage(ctx, &models.ProductImage{ProductID: productID, URL: url}); err != nil {
			return nil, fmt.Errorf("insert image row: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Service) checkAll(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if err := s.images.Check(fh.Filename); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) cleanup(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.images.RemoveAll(urls); err != nil {
		slog.WarnContext(ctx, "failed to remove image files", "error", err, "count", len(urls))
	}
}

// selected drops the empty file parts browsers send when no file is chosen.
func selected(files []*multipart.FileHeader) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(files))
	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}
		out = append(out, fh)
	}
	return out
}
