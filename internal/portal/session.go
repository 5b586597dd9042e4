package portal

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSession reports that nothing is persisted.
var ErrNoSession = errors.New("portal: no saved session")

// Profile is the signed-in account as the client knows it.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Token   string    `json:"token"`
	Profile Profile   `json:"user"`
	SavedAt time.Time `json:"savedAt"`
}

// Store persists the session between runs.
type Store interface {
	Load() (*Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// Session is the explicit authenticated context handed to every action.
// The zero state is a guest.
type Session struct {
	mu      sync.RWMutex
	store   Store
	token   string
	profile *Profile
	now     func() time.Time
}

// NewSession creates a guest session backed by store. A nil store keeps the session in memory only.
func NewSession(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Init restores a persisted session. A missing one leaves the session as guest.
func (s *Session) Init() error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}
	if snap.Token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profile := snap.Profile
	profile.Role = ParseRole(string(profile.Role))
	s.token = snap.Token
	s.profile = &profile
	return nil
}

// Begin installs a fresh token and profile after login and persists them.
func (s *Session) Begin(token string, profile Profile) error {
	profile.Role = ParseRole(string(profile.Role))

	s.mu.Lock()
	s.token = token
	s.profile = &profile
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(Snapshot{Token: token, Profile: profile, SavedAt: s.now().UTC()})
}

// Teardown drops the token and profile and clears the persisted copy.
func (s *Session) Teardown() error {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// Token returns the bearer token, empty for a guest.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns the signed-in profile.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Role returns the current role, Guest when signed out.
func (s *Session) Role() Role {
	profile, ok := s.Profile()
	if !ok || s.Token() == "" {
		return Guest
	}
	return profile.Role
}

// Surface is AllowedSurface for the current role.
func (s *Session) Surface() Surface {
	return AllowedSurface(s.Role())
}
