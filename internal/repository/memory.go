package repository

import (
	"context"
	"sync"
	"time"

	"zerobarrier/internal/models"
)

// MemoryRepository keeps accounts in a map. Returned accounts are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[account.Email]; ok {
		return ErrDuplicateEmail
	}
	r.byID[account.ID] = cloneAccount(account)
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(acc), nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.PasswordHash = passwordHash
	acc.UpdatedAt = at
	return nil
}

func (r *MemoryRepository) MarkVerified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.IsVerified = true
	acc.VerificationTokenHash = ""
	acc.UpdatedAt = at
	return nil
}

func (r *MemoryRepository) UpdateEmployerProfile(_ context.Context, id, email, phone string, profile *models.EmployerProfile, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.byEmail[email]; taken && owner != id {
		return ErrDuplicateEmail
	}

	delete(r.byEmail, acc.Email)
	r.byEmail[email] = id
	acc.Email = email
	acc.Phone = phone
	p := *profile
	acc.Profile.Employer = &p
	acc.UpdatedAt = at
	return nil
}

func (r *MemoryRepository) UpdateNotificationSettings(_ context.Context, id string, settings models.NotificationSettings, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.Notifications = &settings
	acc.UpdatedAt = at
	return nil
}

// Delete removes an account. The service never deletes accounts; tests use
// this to simulate removal by another system.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.byID[id]; ok {
		delete(r.byEmail, acc.Email)
		delete(r.byID, id)
	}
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	if a.Profile.Employer != nil {
		e := *a.Profile.Employer
		c.Profile.Employer = &e
	}
	if a.Profile.Worker != nil {
		w := *a.Profile.Worker
		c.Profile.Worker = &w
	}
	if a.Notifications != nil {
		n := *a.Notifications
		c.Notifications = &n
	}
	if a.Preferences != nil {
		p := *a.Preferences
		c.Preferences = &p
	}
	return &c
}
