package domain

import "gorm.io/gorm"

type UserRole string

const (
	RoleBuyer    UserRole = "BUYER"
	RoleProducer UserRole = "PRODUCER"
)

type User struct {
	gorm.Model
	Email        string   `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	DisplayName  string   `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	Role         UserRole `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Verified     bool     `gorm:"column:verified;default:false" json:"verified"`
}

func (User) TableName() string { return "users" }

func NewUser(email, passwordHash, displayName string, role UserRole) *User {
	if role != RoleProducer {
		role = RoleBuyer
	}
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         role,
	}
}

func (u *User) IsProducer() bool {
	return u.Role == RoleProducer
}
