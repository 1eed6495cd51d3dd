package postgres

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) *UserPostgreSQL {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Preload("Roles").First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := u.db.WithContext(ctx).Preload("Roles").Order("id").Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (u *UserPostgreSQL) UpdateFullName(ctx context.Context, id uint, fullName string) error {
	result := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("full_name", fullName)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	result := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_blocked", blocked)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) Roles(ctx context.Context, userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := u.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, translate(err)
	}
	return roles, nil
}

func (u *UserPostgreSQL) SetRoles(ctx context.Context, userID uint, roles []models.Role) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if len(roles) == 0 {
			return nil
		}

		rows := make([]models.UserRole, 0, len(roles))
		for _, role := range roles {
			rows = append(rows, models.UserRole{UserID: userID, Role: role})
		}
		return tx.Create(&rows).Error
	})
	return translate(err)
}

func (u *UserPostgreSQL) TestsForUser(ctx context.Context, userID uint) ([]repositories.UserTestRow, error) {
	var rows []repositories.UserTestRow
	err := u.db.WithContext(ctx).
		Table("attempts").
		Select("attempts.test_id, tests.name, attempts.status").
		Joins("JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.user_id = ?", userID).
		Order("attempts.test_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}
