// Package users manages Teal user profiles. Profiles are thin documents in
// the user collection; the tell pipeline itself keys history by username and
// does not require a profile to exist.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tealbot/teal/pkg/store"
)

// UsersCollection is the storage collection holding user profiles.
const UsersCollection = "teal_users"

// User is a persisted user profile.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CurrentMood  string    `json:"current_mood,omitempty"`
	CurrentState string    `json:"current_state,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service creates and looks up user profiles.
type Service struct {
	store store.Store
}

// NewService returns a Service persisting profiles through st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create persists a new profile for name and returns it. The id and creation
// timestamp are assigned here. No uniqueness constraint is enforced: creating
// the same name twice yields two independent profiles.
func (s *Service) Create(ctx context.Context, name, email string) (*User, error) {
	u := User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, UsersCollection, u); err != nil {
		return nil, fmt.Errorf("users: create %q: %w", name, err)
	}
	return &u, nil
}
