// internal/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: the human-readable identifier users type to sign in

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/status"
	"github.com/reservehub/reservehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrInvalid            = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// bcryptCost matches the cost used across the deployment; raising it only
// affects newly hashed passwords.
const bcryptCost = 12

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user, folding the name and hashing the password
// when one is supplied (password auth method).
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	if strings.TrimSpace(u.FullName) == "" {
		return models.User{}, fmt.Errorf("%w: full_name is required", ErrInvalid)
	}
	if strings.TrimSpace(u.Email) == "" {
		return models.User{}, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if !authz.ValidRole(u.Role) {
		return models.User{}, fmt.Errorf("%w: role must be admin, manager, or member", ErrInvalid)
	}
	if u.AuthMethod == "" {
		u.AuthMethod = "password"
	}
	if !models.IsEnabledAuthMethod(u.AuthMethod) {
		return models.User{}, fmt.Errorf("%w: unsupported auth method", ErrInvalid)
	}
	if u.AuthMethod == "password" {
		if password == "" {
			return models.User{}, fmt.Errorf("%w: password is required for password auth", ErrInvalid)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = string(hash)
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	if u.Status == "" {
		u.Status = status.Active
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies a password sign-in. Disabled accounts and
// non-password auth methods fail the same way as a wrong password so the
// response does not leak which accounts exist.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if u.Status != status.Active || u.PasswordHash == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UpsertGoogleUser finds or creates the user record for a Google sign-in.
// Existing users keep their role and organization; new users join as
// members with no organization until an admin assigns one.
func (s *Store) UpsertGoogleUser(ctx context.Context, email, fullName string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, err
	}

	return s.Create(ctx, models.User{
		FullName:   fullName,
		Email:      email,
		AuthMethod: "google",
		Role:       authz.RoleMember,
	}, "")
}

// SetRole changes a user's role. The caller is responsible for making
// sure the role is one an admin may assign.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !authz.ValidRole(role) {
		return fmt.Errorf("%w: role must be admin, manager, or member", ErrInvalid)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
