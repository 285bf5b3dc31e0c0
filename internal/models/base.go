package models

import "time"

// Base — общие поля для таблиц каталога
type Base struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All — все модели схемы в порядке создания таблиц
func All() []any {
	return []any{&Product{}, &ProductImage{}, &AdminUser{}}
}
