package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (r *ProductsRepository) Transaction(ctx context.Context, fn func(tx *ProductsRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProductsRepository{db: tx})
	})
}

func (r *ProductsRepository) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID loads a product together with its images.
func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Omit("Images").Create(product).Error
}

// Update writes the editable columns, zero values included.
func (r *ProductsRepository) Update(ctx context.Context, product *Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("Name", "Description", "MainImage", "Price").
		Omit(clause.Associations).
		Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepository) AddImage(ctx context.Context, image *ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// ImagesOf returns the images owned by a product.
func (r *ProductsRepository) ImagesOf(ctx context.Context, productID uint) ([]ProductImage, error) {
	var images []ProductImage
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id asc").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteImages removes the listed image rows that belong to productID and
// returns the removed rows. Ids of other products are ignored.
func (r *ProductsRepository) DeleteImages(ctx context.Context, productID uint, ids []uint) ([]ProductImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var images []ProductImage
	q := r.db.WithContext(ctx).Where("product_id = ? AND id IN ?", productID, ids)
	if err := q.Find(&images).Error; err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Delete removes a product and all of its image rows, returning the
// removed images so the caller can clean up their files.
func (r *ProductsRepository) Delete(ctx context.Context, id uint) ([]ProductImage, error) {
	images, err := r.ImagesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("product_id = ?", id).Delete(&ProductImage{}).Error; err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return images, nil
}
