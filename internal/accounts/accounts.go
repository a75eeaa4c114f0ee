// Package accounts persists player identities and the room each player
// was last seen in.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/pixil98/go-errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// User is the stored identity of a player.
type User struct {
	Name      string    `json:"name"`
	Password  string    `json:"password"` // bcrypt hash
	LastRoom  string    `json:"last_room,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate satisfies storage.ValidatingSpec.
func (u *User) Validate() error {
	el := goerrors.NewErrorList()

	if u.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if u.Password == "" {
		el.Add(fmt.Errorf("password is required"))
	}

	return el.Err()
}

// Gateway is the persistence contract the game depends on.
type Gateway interface {
	// FindUser returns nil and no error when the user does not exist.
	FindUser(ctx context.Context, name string) (*User, error)
	// CreateUser fails with ErrDuplicateUsername if the name is taken.
	CreateUser(ctx context.Context, name, password string) (*User, error)
	VerifyCredential(u *User, supplied string) bool
	SaveLastRoom(ctx context.Context, name, roomId string) error
}

// Hasher wraps bcrypt at a fixed cost.
type Hasher struct {
	Cost int
}

func (h Hasher) cost() int {
	if h.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

// Hash returns the bcrypt hash of password.
func (h Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Check reports whether supplied matches the stored hash.
func (h Hasher) Check(hash, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(supplied)) == nil
}

// ValidateHashCost checks cost against the range bcrypt accepts. Zero
// means the default.
func ValidateHashCost(cost int) error {
	if cost == 0 {
		return nil
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
