package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nuworks/authcore"
	"github.com/nuworks/authcore/password"
	"github.com/samber/oops"
)

const seedPassword = "loadtest-password"

// userSet is an in-memory credential store. Every user shares one password
// hash so seeding stays cheap.
type userSet struct {
	password string
	list     []authcore.UserRecord

	mu      sync.RWMutex
	byEmail map[string]int
}

func newUserSet(n int) (*userSet, error) {
	hasher, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		return nil, err
	}
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return nil, err
	}

	s := &userSet{
		password: seedPassword,
		list:     make([]authcore.UserRecord, n),
		byEmail:  make(map[string]int, n),
	}
	for i := range n {
		rec := authcore.UserRecord{
			ID:             fmt.Sprintf("user-%d", i),
			Email:          fmt.Sprintf("user-%d@loadtest.local", i),
			PasswordHash:   hash,
			AuthProviderID: authcore.ProviderEmail,
		}
		s.list[i] = rec
		s.byEmail[rec.Email] = i
	}
	return s, nil
}

func (s *userSet) FindByEmail(_ context.Context, email string) (*authcore.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byEmail[email]
	if !ok {
		return nil, authcore.ErrUserNotFound
	}
	rec := s.list[idx]
	return &rec, nil
}

func (s *userSet) BlockUser(_ context.Context, userID string, _ authcore.BlockReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.list {
		if s.list[i].ID == userID {
			s.list[i].Blocked = true
		}
	}
	return nil
}

// copyTo upserts every seeded user into the credstore users table.
func (s *userSet) copyTo(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range s.list {
		_, err := pool.Exec(ctx,
			`INSERT INTO users (id, email, password, auth_provider_id) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, password = EXCLUDED.password`,
			u.ID, u.Email, u.PasswordHash, int(u.AuthProviderID))
		if err != nil {
			return oops.In("loadtest").With("user_id", u.ID).Wrapf(err, "seed user")
		}
	}
	return nil
}

// seededSession holds the latest tokens issued to one user.
type seededSession struct {
	mu      sync.Mutex
	userID  string
	access  string
	refresh string
}

type sessionTokens struct {
	userID  string
	access  string
	refresh string
}

// replace runs login while holding the slot so the stored tokens always
// belong to the last session written for userID.
func (s *seededSession) replace(login func() (access, refresh string, err error), userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	access, refresh, err := login()
	if err != nil {
		return err
	}
	s.userID, s.access, s.refresh = userID, access, refresh
	return nil
}

func (s *seededSession) load() sessionTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionTokens{userID: s.userID, access: s.access, refresh: s.refresh}
}
