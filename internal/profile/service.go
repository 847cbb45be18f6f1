// Package profile applies partial profile updates to the logged-in farmer.
package profile

import (
	"context"
	"errors"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/directory"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/session"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

// ErrNotLoggedIn is returned when an update arrives with no active session.
var ErrNotLoggedIn = errors.New("Not logged in")

// Patch is a partial update; nil fields are left unchanged. None of the
// fields are validated, matching the permissive original behavior.
type Patch struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Email    *string `json:"email"`
	State    *string `json:"state"`
}

// Service merges profile patches into the session user and the directory.
type Service struct {
	sessions  *session.Store
	directory *directory.Directory
}

func NewService(sessions *session.Store, dir *directory.Directory) *Service {
	return &Service{sessions: sessions, directory: dir}
}

// Update merges the patch over the current session user, persists the result
// to the session, and replaces the matching directory value in place. The
// directory entry keeps its existing key even when the email changed;
// ephemeral sessions with no directory entry update the session only.
func (s *Service) Update(ctx context.Context, patch Patch) (*domain.User, error) {
	u, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.State != nil {
		u.State = *patch.State
	}
	if err := s.sessions.Set(ctx, *u); err != nil {
		return nil, err
	}
	if err := s.directory.ReplaceByID(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}
