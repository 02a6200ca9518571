package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	"github.com/allisson/claims/internal/database"
)

// MemoryClientRepository keeps clients in memory. Values are copied in and out.
type MemoryClientRepository struct {
	lock    *database.LockTxManager
	clients map[uuid.UUID]authDomain.Client
}

// NewMemoryClientRepository creates a new MemoryClientRepository guarded by lock.
func NewMemoryClientRepository(lock *database.LockTxManager) *MemoryClientRepository {
	return &MemoryClientRepository{lock: lock, clients: make(map[uuid.UUID]authDomain.Client)}
}

func (r *MemoryClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	r.lock.Do(ctx, func() {
		r.clients[client.ID] = *client
	})
	return nil
}

func (r *MemoryClientRepository) Update(ctx context.Context, client *authDomain.Client) error {
	err := authDomain.ErrClientNotFound
	r.lock.Do(ctx, func() {
		if _, ok := r.clients[client.ID]; ok {
			r.clients[client.ID] = *client
			err = nil
		}
	})
	return err
}

func (r *MemoryClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	var (
		client authDomain.Client
		found  bool
	)
	r.lock.Do(ctx, func() {
		client, found = r.clients[clientID]
	})
	if !found {
		return nil, authDomain.ErrClientNotFound
	}
	return &client, nil
}

// MemoryTokenRepository keeps tokens in memory, indexed by ID and by hash.
type MemoryTokenRepository struct {
	lock   *database.LockTxManager
	tokens map[uuid.UUID]authDomain.Token
	byHash map[string]uuid.UUID
}

// NewMemoryTokenRepository creates a new MemoryTokenRepository guarded by lock.
func NewMemoryTokenRepository(lock *database.LockTxManager) *MemoryTokenRepository {
	return &MemoryTokenRepository{
		lock:   lock,
		tokens: make(map[uuid.UUID]authDomain.Token),
		byHash: make(map[string]uuid.UUID),
	}
}

func (r *MemoryTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	r.lock.Do(ctx, func() {
		r.tokens[token.ID] = copyToken(token)
		r.byHash[token.TokenHash] = token.ID
	})
	return nil
}

// Update replaces expiry and revocation. The hash of a stored token never changes.
func (r *MemoryTokenRepository) Update(ctx context.Context, token *authDomain.Token) error {
	err := authDomain.ErrTokenNotFound
	r.lock.Do(ctx, func() {
		stored, ok := r.tokens[token.ID]
		if !ok {
			return
		}
		updated := copyToken(token)
		stored.ExpiresAt = updated.ExpiresAt
		stored.RevokedAt = updated.RevokedAt
		r.tokens[token.ID] = stored
		err = nil
	})
	return err
}

func (r *MemoryTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.Token, error) {
	var (
		token authDomain.Token
		found bool
	)
	r.lock.Do(ctx, func() {
		token, found = r.tokens[tokenID]
	})
	if !found {
		return nil, authDomain.ErrTokenNotFound
	}
	token = copyToken(&token)
	return &token, nil
}

func (r *MemoryTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	var (
		token authDomain.Token
		found bool
	)
	r.lock.Do(ctx, func() {
		var id uuid.UUID
		if id, found = r.byHash[tokenHash]; found {
			token = r.tokens[id]
		}
	})
	if !found {
		return nil, authDomain.ErrTokenNotFound
	}
	token = copyToken(&token)
	return &token, nil
}

// DeleteExpired removes tokens that expired before olderThan.
func (r *MemoryTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var deleted int64
	r.lock.Do(ctx, func() {
		for id, token := range r.tokens {
			if token.ExpiresAt.Before(olderThan) {
				delete(r.byHash, token.TokenHash)
				delete(r.tokens, id)
				deleted++
			}
		}
	})
	return deleted, nil
}

// CountExpired counts tokens that expired before olderThan.
func (r *MemoryTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var count int64
	r.lock.Do(ctx, func() {
		for _, token := range r.tokens {
			if token.ExpiresAt.Before(olderThan) {
				count++
			}
		}
	})
	return count, nil
}

func copyToken(token *authDomain.Token) authDomain.Token {
	c := *token
	if token.RevokedAt != nil {
		revokedAt := *token.RevokedAt
		c.RevokedAt = &revokedAt
	}
	return c
}
