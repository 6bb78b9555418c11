package store

import (
	"context"
	"errors"
	"strings"

	"github.com/icco/yamdb/models"
	"gorm.io/gorm"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "get user by username")
	}
	return &u, nil
}

// ListUsers returns users whose username contains search, case-insensitively.
func (s *Store) ListUsers(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	q := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return q
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count users")
	}
	var users []models.User
	if err := page.apply(q().Order("username")).Find(&users).Error; err != nil {
		return nil, 0, translate(err, "list users")
	}
	return users, total, nil
}

// UsernameTaken reports whether another user than excludeID has username.
func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return s.taken(ctx, "username", username, excludeID)
}

// EmailTaken reports whether another user than excludeID has email.
func (s *Store) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return s.taken(ctx, "email", email, excludeID)
}

func (s *Store) taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check "+column)
	}
	return count > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	return translate(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error, "update user")
}

// DeleteUser removes u together with the reviews and comments they wrote and
// the comments left on those reviews.
func (s *Store) DeleteUser(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("author_id = ?", u.ID)
		if err := tx.Where("author_id = ? OR review_id IN (?)", u.ID, reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", u.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, u.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "delete user")
}

// RegisterUser finds the user with email, creating it if needed, and stores
// code as its confirmation code. The username is always reset to the email.
func (s *Store) RegisterUser(ctx context.Context, email, code string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&u).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			u = models.User{Email: email, Username: email, Role: models.RoleUser, ConfirmationCode: code}
			return tx.Create(&u).Error
		case err != nil:
			return err
		}
		u.Username = email
		u.ConfirmationCode = code
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, translate(err, "register user")
	}
	return &u, nil
}

// UserByConfirmation returns the user registered with email whose current
// confirmation code is code.
func (s *Store) UserByConfirmation(ctx context.Context, email, code string) (*models.User, error) {
	if code == "" {
		return nil, translate(gorm.ErrRecordNotFound, "get user by confirmation")
	}
	var u models.User
	err := s.db.WithContext(ctx).
		Where("username = ? AND confirmation_code = ?", email, code).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "get user by confirmation")
	}
	return &u, nil
}
