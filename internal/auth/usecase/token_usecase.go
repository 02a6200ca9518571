package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	authService "github.com/allisson/claims/internal/auth/service"
	apperrors "github.com/allisson/claims/internal/errors"
)

type tokenUseCase struct {
	tokenExpiration time.Duration
	clientRepo      ClientRepository
	tokenRepo       TokenRepository
	secretService   authService.SecretService
	tokenService    authService.TokenService
}

// Issue verifies the client credentials and stores the hash of a new token.
//
// Unknown clients and wrong secrets both return ErrInvalidCredentials so callers cannot
// probe for client IDs. Inactive clients get ErrClientInactive.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	issueTokenInput *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	client, err := t.clientRepo.Get(ctx, issueTokenInput.ClientID)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive {
		return nil, authDomain.ErrClientInactive
	}

	if !t.secretService.CompareSecret(issueTokenInput.ClientSecret, client.Secret) {
		return nil, authDomain.ErrInvalidCredentials
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		ClientID:  client.ID,
		ExpiresAt: now.Add(t.tokenExpiration),
		CreatedAt: now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// Authenticate resolves a token hash to its client. Missing, expired and revoked tokens
// all return ErrInvalidCredentials.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !token.IsValid(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	client, err := t.clientRepo.Get(ctx, token.ClientID)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive {
		return nil, authDomain.ErrClientInactive
	}

	return client, nil
}

// CleanupExpired deletes, or with dryRun counts, tokens that expired more than days ago.
func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be non-negative")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	if dryRun {
		return t.tokenRepo.CountExpired(ctx, cutoff)
	}
	return t.tokenRepo.DeleteExpired(ctx, cutoff)
}

// NewTokenUseCase creates a new TokenUseCase issuing tokens valid for tokenExpiration.
func NewTokenUseCase(
	tokenExpiration time.Duration,
	clientRepo ClientRepository,
	tokenRepo TokenRepository,
	secretService authService.SecretService,
	tokenService authService.TokenService,
) TokenUseCase {
	return &tokenUseCase{
		tokenExpiration: tokenExpiration,
		clientRepo:      clientRepo,
		tokenRepo:       tokenRepo,
		secretService:   secretService,
		tokenService:    tokenService,
	}
}
