package repositories

import (
	"context"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Where("id = ?", id).First(&user)
	return user, err
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	n, err := orm.New(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count()
	return n > 0, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}
