package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	authHTTP "github.com/allisson/claims/internal/auth/http"
	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/claims/http/dto"
	claimsUsecaseMocks "github.com/allisson/claims/internal/claims/usecase/mocks"
)

type registryTestEnv struct {
	router  *gin.Engine
	useCase *claimsUsecaseMocks.MockRegistryUseCase
	caller  uuid.UUID
}

func setupRegistryTestHandler(t *testing.T, authenticated bool) *registryTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &registryTestEnv{
		useCase: &claimsUsecaseMocks.MockRegistryUseCase{},
		caller:  uuid.Must(uuid.NewV7()),
	}
	handler := NewRegistryHandler(env.useCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	env.router = gin.New()
	if authenticated {
		client := &authDomain.Client{ID: env.caller, IsActive: true}
		env.router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), client))
			c.Next()
		})
	}
	claims := env.router.Group("/v1/claims")
	claims.POST("", handler.CreateHandler)
	claims.GET("", handler.ListHandler)
	claims.GET("/:claim", handler.GetHandler)
	claims.DELETE("/:claim", handler.RevokeHandler)
	claims.POST("/:claim/transfer", handler.TransferHandler)

	t.Cleanup(func() { env.useCase.AssertExpectations(t) })
	return env
}

func (e *registryTestEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(w, req)
	return w
}

func registration(t *testing.T, owner uuid.UUID, at claimsDomain.LogicalTime, raw ...byte) *claimsDomain.Registration {
	t.Helper()
	claim, err := claimsDomain.NewClaim(raw, claimsDomain.DefaultMaxClaimLength)
	require.NoError(t, err)
	now := time.Now().UTC()
	return &claimsDomain.Registration{Claim: claim, Owner: owner, RegisteredAt: at, CreatedAt: now, UpdatedAt: now}
}

func decodeRegistration(t *testing.T, w *httptest.ResponseRecorder) dto.RegistrationResponse {
	t.Helper()
	var response dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestRegistryHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Create", mock.Anything, env.caller, []byte{0, 1}).
			Return(registration(t, env.caller, 10, 0, 1), nil).Once()

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":"0001"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		response := decodeRegistration(t, w)
		assert.Equal(t, "0001", response.Claim)
		assert.Equal(t, env.caller.String(), response.Owner)
		assert.Equal(t, uint64(10), response.RegisteredAt)
	})

	t.Run("Success_EmptyClaim", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Create", mock.Anything, env.caller, mock.MatchedBy(func(raw []byte) bool { return len(raw) == 0 })).
			Return(registration(t, env.caller, 1), nil).Once()

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":""}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Error_AlreadyExists", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Create", mock.Anything, env.caller, []byte{0, 1}).
			Return(nil, claimsDomain.ErrProofAlreadyExists).Once()

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":"0001"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_ClaimTooLong", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Create", mock.Anything, env.caller, mock.Anything).
			Return(nil, claimsDomain.ErrClaimTooLong).Once()

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":"000102"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidHex", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":"xyz"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingClaim", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodPost, "/v1/claims", `{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		env := setupRegistryTestHandler(t, false)

		w := env.do(http.MethodPost, "/v1/claims", `{"claim":"0001"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRegistryHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		owner := uuid.Must(uuid.NewV7())
		env.useCase.On("Get", mock.Anything, []byte{0xab}).Return(registration(t, owner, 3, 0xab), nil).Once()

		w := env.do(http.MethodGet, "/v1/claims/ab", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, owner.String(), decodeRegistration(t, w).Owner)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Get", mock.Anything, []byte{0xab}).Return(nil, claimsDomain.ErrNoSuchClaim).Once()

		w := env.do(http.MethodGet, "/v1/claims/ab", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidHex", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodGet, "/v1/claims/nothex", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRegistryHandler_RevokeHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Revoke", mock.Anything, env.caller, []byte{0xab}).Return(nil).Once()

		w := env.do(http.MethodDelete, "/v1/claims/ab", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_NotOwner", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Revoke", mock.Anything, env.caller, []byte{0xab}).Return(claimsDomain.ErrNotClaimOwner).Once()

		w := env.do(http.MethodDelete, "/v1/claims/ab", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRegistryHandler_TransferHandler(t *testing.T) {
	to := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Transfer", mock.Anything, env.caller, to, []byte{0xab}).
			Return(registration(t, to, 9, 0xab), nil).Once()

		w := env.do(http.MethodPost, "/v1/claims/ab/transfer", `{"to":"`+to.String()+`"}`)

		require.Equal(t, http.StatusOK, w.Code)
		response := decodeRegistration(t, w)
		assert.Equal(t, to.String(), response.Owner)
		assert.Equal(t, uint64(9), response.RegisteredAt)
	})

	t.Run("Error_InvalidRecipient", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodPost, "/v1/claims/ab/transfer", `{"to":"bob"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NoSuchClaim", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("Transfer", mock.Anything, env.caller, to, []byte{0xab}).
			Return(nil, claimsDomain.ErrNoSuchClaim).Once()

		w := env.do(http.MethodPost, "/v1/claims/ab/transfer", `{"to":"`+to.String()+`"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRegistryHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultsToCaller", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		env.useCase.On("ListByOwner", mock.Anything, env.caller, 0, 50).
			Return([]*claimsDomain.Registration{registration(t, env.caller, 1, 0x01)}, nil).Once()

		w := env.do(http.MethodGet, "/v1/claims", "")

		require.Equal(t, http.StatusOK, w.Code)
		var response dto.ListRegistrationsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
	})

	t.Run("Success_ExplicitOwner", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)
		owner := uuid.Must(uuid.NewV7())
		env.useCase.On("ListByOwner", mock.Anything, owner, 10, 5).
			Return([]*claimsDomain.Registration{}, nil).Once()

		w := env.do(http.MethodGet, "/v1/claims?owner="+owner.String()+"&offset=10&limit=5", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Error_InvalidOwner", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodGet, "/v1/claims?owner=bob", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		env := setupRegistryTestHandler(t, true)

		w := env.do(http.MethodGet, "/v1/claims?limit=1000", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
