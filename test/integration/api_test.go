// Package integration provides end-to-end tests for the claims API. Every test runs
// against the in-memory stores and, when reachable, PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/claims/internal/app"
	authDomain "github.com/allisson/claims/internal/auth/domain"
	authDTO "github.com/allisson/claims/internal/auth/http/dto"
	claimsDTO "github.com/allisson/claims/internal/claims/http/dto"
	"github.com/allisson/claims/internal/config"
	outboxDomain "github.com/allisson/claims/internal/outbox/domain"
	outboxRepository "github.com/allisson/claims/internal/outbox/repository"
	"github.com/allisson/claims/internal/testutil"
)

const claimMaxLength = 64

// integrationTestContext holds the running server and the credentials of two clients.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
	alice     uuid.UUID
	bob       uuid.UUID
	tokens    map[uuid.UUID]string
}

// makeRequest performs an HTTP request as caller (uuid.Nil for anonymous) and returns
// the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	caller uuid.UUID,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+ctx.tokens[caller])
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// createClient stores an active client and exchanges its credentials for a token over HTTP.
func (ctx *integrationTestContext) createClient(t *testing.T, name string) uuid.UUID {
	t.Helper()

	clientUseCase, err := ctx.container.ClientUseCase()
	require.NoError(t, err, "failed to get client use case")

	output, err := clientUseCase.Create(context.Background(), &authDomain.CreateClientInput{
		Name:     name,
		IsActive: true,
	})
	require.NoError(t, err, "failed to create client "+name)

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/token", authDTO.IssueTokenRequest{
		ClientID:     output.ID.String(),
		ClientSecret: output.PlainSecret,
	}, uuid.Nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var token authDTO.IssueTokenResponse
	require.NoError(t, json.Unmarshal(body, &token))
	require.NotEmpty(t, token.Token)

	ctx.tokens[output.ID] = token.Token
	return output.ID
}

// outboxEvents returns the event types stored in the outbox, in no particular order.
func (ctx *integrationTestContext) outboxEvents(t *testing.T) []string {
	t.Helper()

	repo, err := ctx.container.OutboxRepository()
	require.NoError(t, err)

	if memoryRepo, ok := repo.(*outboxRepository.MemoryOutboxEventRepository); ok {
		var types []string
		for _, event := range memoryRepo.All(context.Background()) {
			types = append(types, event.EventType)
		}
		return types
	}

	rows, err := ctx.db.Query("SELECT event_type FROM outbox_events")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var types []string
	for rows.Next() {
		var eventType string
		require.NoError(t, rows.Scan(&eventType))
		types = append(types, eventType)
	}
	require.NoError(t, rows.Err())
	return types
}

// setupIntegrationTest builds the container for dbDriver and serves its router.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DBDriver:             dbDriver,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		LogLevel:             "error",
		ClaimMaxLength:       claimMaxLength,
		ClockDriver:          "memory",
		BlockInterval:        time.Second,
		AuthTokenExpiration:  time.Hour,
		MetricsEnabled:       true,
		MetricsNamespace:     "claims_integration",
		OutboxInterval:       time.Second,
		OutboxBatchSize:      100,
		OutboxMaxRetries:     3,
	}

	var db *sql.DB
	switch dbDriver {
	case "postgres":
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		cfg.DBConnectionString = testutil.GetPostgresTestDSN()
	case "mysql":
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		cfg.DBConnectionString = testutil.GetMySQLTestDSN()
	}

	container := app.NewContainer(cfg)

	server, err := container.HTTPServer()
	require.NoError(t, err, "failed to build http server")

	ctx := &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(server.GetHandler()),
		dbDriver:  dbDriver,
		tokens:    make(map[uuid.UUID]string),
	}

	t.Cleanup(func() {
		ctx.server.Close()
		_ = container.Shutdown(context.Background())
		if db != nil {
			testutil.TeardownDB(t, db)
		}
	})

	ctx.alice = ctx.createClient(t, "alice")
	ctx.bob = ctx.createClient(t, "bob")
	return ctx
}

func forEachDriver(t *testing.T, fn func(t *testing.T, ctx *integrationTestContext)) {
	for _, driver := range []string{"memory", "postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			fn(t, setupIntegrationTest(t, driver))
		})
	}
}

func decodeRegistration(t *testing.T, body []byte) claimsDTO.RegistrationResponse {
	t.Helper()
	var registration claimsDTO.RegistrationResponse
	require.NoError(t, json.Unmarshal(body, &registration), string(body))
	return registration
}

func TestIntegration_ClaimLifecycle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		claim := "cafe"

		// Create
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": claim}, ctx.alice)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		created := decodeRegistration(t, body)
		assert.Equal(t, claim, created.Claim)
		assert.Equal(t, ctx.alice.String(), created.Owner)

		// Duplicate, by the owner or anyone else
		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": claim}, ctx.alice)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": claim}, ctx.bob)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		// Lookup
		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/claims/"+claim, nil, ctx.bob)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		found := decodeRegistration(t, body)
		assert.Equal(t, created.Claim, found.Claim)
		assert.Equal(t, created.Owner, found.Owner)
		assert.Equal(t, created.RegisteredAt, found.RegisteredAt)

		// Non-owners cannot revoke or transfer
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+claim, nil, ctx.bob)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/claims/"+claim+"/transfer",
			map[string]string{"to": ctx.bob.String()}, ctx.bob)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		// Transfer to bob
		resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/claims/"+claim+"/transfer",
			map[string]string{"to": ctx.bob.String()}, ctx.alice)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		transferred := decodeRegistration(t, body)
		assert.Equal(t, ctx.bob.String(), transferred.Owner)
		assert.GreaterOrEqual(t, transferred.RegisteredAt, created.RegisteredAt)

		// The previous owner lost control
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+claim, nil, ctx.alice)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		// Revoke by the new owner
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+claim, nil, ctx.bob)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/claims/"+claim, nil, ctx.alice)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+claim, nil, ctx.bob)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		// A revoked claim can be registered again
		resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": claim}, ctx.alice)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		// One notification per successful mutation: create, transfer, revoke, create
		assert.ElementsMatch(t, []string{
			"claim.created", "claim.transferred", "claim.revoked", "claim.created",
		}, ctx.outboxEvents(t))
	})
}

func TestIntegration_ValidationOrder(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		tooLong := hex.EncodeToString(bytes.Repeat([]byte{0x01}, claimMaxLength+1))
		maxed := hex.EncodeToString(bytes.Repeat([]byte{0x02}, claimMaxLength))

		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": tooLong}, ctx.alice)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

		resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": maxed}, ctx.alice)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		// Length is checked before existence, existence before ownership
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+tooLong, nil, ctx.bob)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/0badc0de", nil, ctx.bob)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/claims/"+maxed, nil, ctx.bob)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/claims/not-hex", nil, ctx.alice)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/claims/"+maxed+"/transfer",
			map[string]string{"to": "nobody"}, ctx.alice)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		// Failed requests leave no trace
		assert.Equal(t, []string{"claim.created"}, ctx.outboxEvents(t))
	})
}

func TestIntegration_ListClaims(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		for _, claim := range []string{"01", "02", "03"} {
			resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": claim}, ctx.alice)
			require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		}

		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/claims", nil, ctx.alice)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var list claimsDTO.ListRegistrationsResponse
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list.Data, 3)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/claims?limit=2&offset=2", nil, ctx.alice)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list.Data, 1)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/claims", nil, ctx.bob)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":[]}`, string(body))

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/claims?owner="+ctx.alice.String(), nil, ctx.bob)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list.Data, 3)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/claims?limit=0", nil, ctx.alice)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestIntegration_Authentication(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/claims/cafe", nil, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/token", authDTO.IssueTokenRequest{
			ClientID:     ctx.alice.String(),
			ClientSecret: "wrong-secret",
		}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		clientUseCase, err := ctx.container.ClientUseCase()
		require.NoError(t, err)
		require.NoError(t, clientUseCase.Update(context.Background(), ctx.bob, &authDomain.UpdateClientInput{
			Name:     "bob",
			IsActive: false,
		}))

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/claims", nil, ctx.bob)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestIntegration_OutboxDelivery(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/claims", map[string]string{"claim": "beef"}, ctx.alice)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		worker, err := ctx.container.OutboxUseCase()
		require.NoError(t, err)
		require.NoError(t, worker.ProcessEvents(context.Background()))

		repo, err := ctx.container.OutboxRepository()
		require.NoError(t, err)
		pending, err := repo.GetPendingEvents(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		if ctx.db != nil {
			var status string
			require.NoError(t, ctx.db.QueryRow("SELECT status FROM outbox_events").Scan(&status))
			assert.Equal(t, string(outboxDomain.OutboxEventStatusProcessed), status)
		}
	})
}

func TestIntegration_HealthAndMetrics(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx *integrationTestContext) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/health", nil, uuid.Nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/ready", nil, uuid.Nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		metricsServer, err := ctx.container.MetricsServer()
		require.NoError(t, err)
		require.NotNil(t, metricsServer)

		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "claims_integration"))
	})
}
