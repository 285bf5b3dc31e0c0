package models

import "time"

// Product — таблица products
type Product struct {
	Base
	Name        string         `gorm:"not null"`
	Description string         `gorm:"type:text"`
	MainImage   string         // копия URL одной из картинок, напр. "/static/uploads/abc.jpg"
	Price       int64          `gorm:"not null;default:0"` // minor units
	Images      []ProductImage `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// ProductImage — таблица product_images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"index;not null"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
