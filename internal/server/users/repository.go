package users

import (
	"context"
)

// Repository is the persistence collaborator for users and their
// addresses. Create persists the user together with its addresses as one
// atomic unit. List returns a page ordered by name ascending plus the
// total count.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]User, int, error)
}
