package user

import (
	"context"
	"fmt"

	"devconnect/internal/errs"

	"gorm.io/gorm"
)

// Store is the identity store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts u. A username or email collision, including one lost to a
// concurrent insert, is reported as errs.ErrConflict.
func (s *Store) Create(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return errs.FromStore(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) ByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, errs.FromStore(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}

func (s *Store) ByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, errs.FromStore(err, "user "+username)
	}
	return &u, nil
}

// Taken reports whether username or email is already registered.
func (s *Store) Taken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, errs.FromStore(err, "check user")
	}
	return count > 0, nil
}

// List returns users newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, errs.FromStore(err, "list users")
	}
	return users, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return 0, errs.FromStore(err, "count users")
	}
	return count, nil
}

func (s *Store) HasAdmin(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error
	if err != nil {
		return false, errs.FromStore(err, "find admin")
	}
	return count > 0, nil
}

func (s *Store) SetRole(ctx context.Context, id uint, role Role) error {
	return s.update(ctx, id, map[string]any{"role": role})
}

func (s *Store) MarkVerified(ctx context.Context, id uint) error {
	return s.update(ctx, id, map[string]any{"verified": true})
}

func (s *Store) UpdateProfile(ctx context.Context, id uint, skills, bio string) error {
	return s.update(ctx, id, map[string]any{"skills": skills, "bio": bio})
}

func (s *Store) update(ctx context.Context, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return errs.FromStore(res.Error, fmt.Sprintf("update user %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// Usernames resolves ids to usernames. Unknown ids are absent from the map.
func (s *Store) Usernames(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID       uint
		Username string
	}
	err := s.db.WithContext(ctx).Model(&User{}).
		Select("id", "username").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, errs.FromStore(err, "resolve usernames")
	}
	for _, r := range rows {
		out[r.ID] = r.Username
	}
	return out, nil
}
