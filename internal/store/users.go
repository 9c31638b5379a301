package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wallet_ledger/internal/domain"

	"gorm.io/gorm"
)

// UserStore reads and writes the identity collaborator's users table.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore wraps db.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Resolve finds a user by email (anything containing "@") or by numeric id.
func (s *UserStore) Resolve(ctx context.Context, emailOrID string) (*domain.User, error) {
	key := strings.TrimSpace(emailOrID)
	if key == "" {
		return nil, ErrNotFound
	}
	if strings.Contains(key, "@") {
		return s.ByEmail(ctx, key)
	}
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrNotFound
	}
	return s.ByID(ctx, uint(id))
}

func (s *UserStore) ByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ByEmail matches case-insensitively; emails are stored lower-cased.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// List returns one page of users with their wallets, ordered by id, and the
// total user count.
func (s *UserStore) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []domain.User
	if err := s.db.WithContext(ctx).Preload("Wallet").Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Register creates u and its zero-balance wallet in one transaction.
func (s *UserStore) Register(ctx context.Context, u *domain.User, currency string) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing > 0 {
			return ErrEmailTaken
		}
		if err := tx.Omit("Wallet").Create(u).Error; err != nil {
			// Lost a race with a concurrent registration of the same email
			if IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		wallet := domain.NewWallet(u.ID, currency)
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		u.Wallet = wallet
		return nil
	})
}

// UpdateName sets the user's full name.
func (s *UserStore) UpdateName(ctx context.Context, id uint, fullName string) error {
	return s.update(ctx, id, "full_name", fullName)
}

// UpdatePassword stores a new password hash for the user.
func (s *UserStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.update(ctx, id, "password", hash)
}

func (s *UserStore) update(ctx context.Context, id uint, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user's transactions, wallet and user row together.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("id = ?", id).Take(&u).Error; err != nil {
			return notFound(err)
		}
		walletIDs := tx.Model(&domain.Wallet{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("wallet_id IN (?)", walletIDs).Delete(&domain.Transaction{}).Error; err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Wallet{}).Error; err != nil {
			return fmt.Errorf("delete wallet: %w", err)
		}
		if err := tx.Delete(&u).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// IsNotFound reports whether err came from a lookup that matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
