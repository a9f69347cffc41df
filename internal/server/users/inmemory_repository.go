package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/apetrovs/databoard/internal/common"
)

// InMemoryRepository is a map-backed Repository used in development mode
// (empty DSN) and by transport tests. It enforces the same e-mail
// uniqueness guarantee the database index provides.
type InMemoryRepository struct {
	mu            sync.RWMutex
	byID          map[int64]*User
	nextUserID    int64
	nextAddressID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[int64]*User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return nil, common.ErrEmailTaken
		}
	}

	r.nextUserID++
	user.ID = r.nextUserID
	user.CreatedAt = time.Now()
	for i := range user.Addresses {
		r.nextAddressID++
		user.Addresses[i].ID = r.nextAddressID
		user.Addresses[i].UserID = user.ID
	}

	stored := cloneUser(user)
	r.byID[user.ID] = &stored

	return user, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			result := cloneUser(u)
			return &result, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	result := cloneUser(u)
	return &result, nil
}

func (r *InMemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset < 0 || offset >= total || limit <= 0 {
		return []User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

func cloneUser(u *User) User {
	c := *u
	c.Addresses = append([]Address(nil), u.Addresses...)
	return c
}
