// internal/models/user.go
package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Company struct {
	BaseModel
	Name  string `json:"name" gorm:"size:255;not null"`
	Email string `json:"email" gorm:"size:255"`
	Phone string `json:"phone" gorm:"size:50"`
}

type User struct {
	BaseModel
	CompanyID    uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FirstName    string    `json:"first_name" gorm:"size:100"`
	LastName     string    `json:"last_name" gorm:"size:100"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);default:'vendedor';index"`
	Active       bool      `json:"active" gorm:"default:true"`

	// Relationships
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}
