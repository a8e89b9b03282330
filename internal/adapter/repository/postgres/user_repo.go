// Package postgres provides the document-style user store behind the user
// service's find/insert port.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gateway-services/internal/domain/user"
)

// UserRepo implements usersvc.Repository on GORM.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table. Email
// carries no unique index: duplicate emails are permitted.
type UserSchema struct {
	ID    string `gorm:"primaryKey;size:36"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
	Age   *int
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// BeforeCreate assigns the opaque identifier. This is the only place an id
// is ever set.
func (m *UserSchema) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Migrate creates the users table if it does not exist yet.
func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&UserSchema{})
}

// FindAll returns every user record in store order.
func (r *UserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, m := range models {
		users[i] = toDomain(m)
	}
	return users, nil
}

// Insert persists a new user record and returns it with the assigned id.
func (r *UserRepo) Insert(ctx context.Context, u user.User) (user.User, error) {
	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return toDomain(model), nil
}

func toDomain(m UserSchema) user.User {
	return user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
		Age:   m.Age,
	}
}
