package store

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkwell/models"
)

// NewUser holds the fields accepted when creating a user.
type NewUser struct {
	Username  string
	Password  string
	Email     *string
	Signature *string
}

// CreateUser inserts a user and returns the store-assigned id.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (uint, error) {
	if strings.TrimSpace(in.Username) == "" {
		return 0, validationError("username is required")
	}
	if in.Password == "" {
		return 0, validationError("password is required")
	}
	stored, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	user := models.User{
		Username:  in.Username,
		Password:  stored,
		Email:     in.Email,
		Signature: in.Signature,
	}
	if err := s.conn(ctx).Create(&user).Error; err != nil {
		return 0, classify(err, nil)
	}
	s.log.Debug("user created", zap.Uint("id", user.ID))
	return user.ID, nil
}

// GetUserByID is a primary key lookup.
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, classify(err, nil)
	}
	return &user, nil
}

// FindUsersByUsername returns every user with exactly this username, lowest id first.
func (s *Store) FindUsersByUsername(ctx context.Context, username string, page Page) ([]models.User, error) {
	users := []models.User{}
	q := s.conn(ctx).Where("username = ?", username).Order("id ASC")
	if err := page.normalized().apply(q).Find(&users).Error; err != nil {
		return nil, classify(err, nil)
	}
	return users, nil
}

// UpdateUserPassword loads the user and saves the new password.
// Concurrent updates are last-writer-wins.
func (s *Store) UpdateUserPassword(ctx context.Context, id uint, password string) error {
	if password == "" {
		return validationError("password is required")
	}
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("password", stored).Error
	})
	return classify(err, nil)
}

// CheckUserPassword reports whether password matches the stored credential of user id.
func (s *Store) CheckUserPassword(ctx context.Context, id uint, password string) (bool, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s.hasher.Check(user.Password, password), nil
}

// DeleteUser removes the user. Articles still pointing at it make the delete fail with ErrConflict.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return classify(res.Error, ErrConflict)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidateAuthor(ctx, id)
	s.log.Debug("user deleted", zap.Uint("id", id))
	return nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, classify(err, nil)
	}
	return n, nil
}
