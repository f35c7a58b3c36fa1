package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

// Identity is what an external provider tells us about a user on sign-in.
// Nil fields leave the stored value untouched.
type Identity struct {
	OpenID      string
	Name        *string
	Email       *string
	LoginMethod *string
	Role        *string
}

func (s *Store) GetUserByID(ctx context.Context, id uint) *models.User {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByOpenID(ctx context.Context, openID string) *models.User {
	return s.findUser(ctx, "open_id = ?", openID)
}

// GetUserByEmail returns the oldest password-enabled account for email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) *models.User {
	return s.findUser(ctx, "email = ? AND password <> ''", email)
}

func (s *Store) findUser(ctx context.Context, query string, args ...interface{}) *models.User {
	var users []models.User
	s.read(ctx, "user", func(db *gorm.DB) error {
		return db.Where(query, args...).Order("id ASC").Limit(1).Find(&users).Error
	})
	if len(users) == 0 {
		return nil
	}
	return &users[0]
}

// UpsertUser creates or refreshes the user keyed by OpenID and stamps
// last_signed_in.
func (s *Store) UpsertUser(ctx context.Context, id Identity) (*models.User, error) {
	if id.OpenID == "" {
		return nil, errors.New("user openId is required for upsert")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		var found []models.User
		if err := tx.Where("open_id = ?", id.OpenID).Limit(1).Find(&found).Error; err != nil {
			return err
		}

		now := s.now()
		if len(found) == 0 {
			user = models.User{OpenID: id.OpenID, Role: models.RoleUser, LastSignedIn: now}
			applyIdentity(&user, id)
			return tx.Create(&user).Error
		}

		user = found[0]
		applyIdentity(&user, id)
		user.LastSignedIn = now
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "upsert user")
	}
	return &user, nil
}

func applyIdentity(u *models.User, id Identity) {
	if id.Name != nil {
		u.Name = *id.Name
	}
	if id.Email != nil {
		u.Email = *id.Email
	}
	if id.LoginMethod != nil {
		u.LoginMethod = *id.LoginMethod
	}
	if id.Role != nil {
		u.Role = *id.Role
	}
}

func (s *Store) TouchSignIn(ctx context.Context, userID uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_signed_in", s.now()).Error, "touch sign-in")
}

func (s *Store) ListUsers(ctx context.Context) []models.User {
	users := []models.User{}
	if !s.read(ctx, "users", func(db *gorm.DB) error {
		return db.Order("id ASC").Find(&users).Error
	}) {
		return []models.User{}
	}
	return users
}

// CreateUser inserts u as given; the caller hashes the password.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.LastSignedIn.IsZero() {
		u.LastSignedIn = s.now()
	}
	return errors.Wrap(db.Create(u).Error, "create user")
}

// UpdateUser applies column updates to one user. Keys are column names.
func (s *Store) UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNoChanges
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error, "update user")
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Where("id = ?", id).Delete(&models.User{}).Error, "delete user")
}
