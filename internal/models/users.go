package models

import "golang.org/x/crypto/bcrypt"

// AdminUser — таблица admin_users. Записи создаются утилитой cmd/createadmin
type AdminUser struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	HashPassword string `gorm:"column:hash_password;not null"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// HashPassword превращает обычный пароль в безопасный хэш
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword проверяет пароль на совпадение с хэшем
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
