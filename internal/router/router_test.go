package router

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/ecowork/api/handler"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/fallback"
	"github.com/fastygo/ecowork/internal/infrastructure/kvstore"
	"github.com/fastygo/ecowork/internal/infrastructure/monitor"
	"github.com/fastygo/ecowork/internal/middleware"
	"github.com/fastygo/ecowork/internal/token"
	"github.com/fastygo/ecowork/pkg/httpcontext"
	boltrepo "github.com/fastygo/ecowork/repository/bolt"
	companyUC "github.com/fastygo/ecowork/usecase/company"
	directoryUC "github.com/fastygo/ecowork/usecase/directory"
	rewardsUC "github.com/fastygo/ecowork/usecase/rewards"
	sessionUC "github.com/fastygo/ecowork/usecase/session"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Meta   struct {
		Source   string `json:"source"`
		Degraded bool   `json:"degraded"`
	} `json:"meta"`
}

func newGateway(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	ctx := context.Background()

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "session.db"), "session")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	repo := boltrepo.NewSessionRepository(kv)

	fb := fallback.New()
	client := apiclient.New("http://backend.test",
		apiclient.WithHTTPClient(&fasthttp.Client{Dial: func(string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		}}),
		apiclient.WithFallback(fb),
	)
	store := sessionUC.New(client, repo, token.NewIssuer("secret", "", time.Hour), fb, nil)
	store.Initialize(ctx)

	mon := monitor.New(client, repo, store, time.Minute, nil)
	mon.Refresh(ctx)

	adapter := httpcontext.NewAdapter(time.Second)
	handlers := Handlers{
		Session:   apiHandler.NewSessionHandler(store, adapter, nil),
		Rewards:   apiHandler.NewRewardsHandler(rewardsUC.New(client, nil), adapter, nil),
		Company:   apiHandler.NewCompanyHandler(companyUC.New(client, nil), adapter, nil),
		Directory: apiHandler.NewDirectoryHandler(directoryUC.New(client, nil), adapter, nil),
		Health:    apiHandler.NewHealthHandler(mon, store, adapter, nil),
	}
	return New(handlers, middleware.RequireSession(store, nil)).Handler
}

func call(t *testing.T, h fasthttp.RequestHandler, method, uri, body string) (int, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	h(&ctx)

	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	return ctx.Response.StatusCode(), env
}

func TestHealth(t *testing.T) {
	h := newGateway(t)
	status, env := call(t, h, "GET", "/health", "")
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"backend":false`)
	assert.Contains(t, string(env.Data), `"storage":true`)
}

func TestEmployeeFlow(t *testing.T) {
	h := newGateway(t)

	status, env := call(t, h, "GET", "/api/v1/records", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, env = call(t, h, "POST", "/api/v1/session/login", `{"email":"","password":"x"}`)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)

	status, _ = call(t, h, "POST", "/api/v1/session/login", `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, env = call(t, h, "POST", "/api/v1/session/login", `{"email":"ana@gmail.com","password":"x"}`)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"degraded":true`)
	assert.Contains(t, string(env.Data), `"id":"emp-1"`)

	status, env = call(t, h, "POST", "/api/v1/records", `{"transportation":"CAR","distance":8,"recordDate":"2025-01-21"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	assert.Equal(t, "fallback", env.Meta.Source)
	assert.True(t, env.Meta.Degraded)
	assert.Contains(t, string(env.Data), `"creditsEarned":10`)

	status, _ = call(t, h, "POST", "/api/v1/records", `{"transportation":"CAR","recordDate":"21/01/2025"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, env = call(t, h, "GET", "/api/v1/stats", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"totalCredits":20`)

	status, env = call(t, h, "GET", "/api/v1/records", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 2)

	status, env = call(t, h, "POST", "/api/v1/benefits/redeem", `{"benefitId":"ben-4"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_CREDITS", env.Code)

	status, env = call(t, h, "GET", "/api/v1/benefits?category=donations", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"doacoes"`)
	assert.NotContains(t, string(env.Data), `"vouchers"`)

	status, _ = call(t, h, "GET", "/api/v1/company/dashboard", "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, env = call(t, h, "DELETE", "/api/v1/session", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.NotContains(t, string(env.Data), `"identity"`)

	status, _ = call(t, h, "GET", "/api/v1/stats", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
}

func TestCompanyFlow(t *testing.T) {
	h := newGateway(t)

	status, _ := call(t, h, "POST", "/api/v1/session/login", `{"email":"rh@empresa.com","password":"x"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	status, env := call(t, h, "GET", "/api/v1/company/dashboard", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"inviteCode":"ECOWORK2025"`)
	assert.Contains(t, string(env.Data), `"totalEmployees":1`)

	status, _ = call(t, h, "POST", "/api/v1/records", `{"transportation":"CAR","distance":15}`)
	assert.Equal(t, fasthttp.StatusForbidden, status)
}

func TestRegistration(t *testing.T) {
	h := newGateway(t)

	status, env := call(t, h, "POST", "/api/v1/session/register/employee",
		`{"name":"Maria","email":"maria@example.com","password":"secret1","inviteCode":"WRONG"}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_INVITE_CODE", env.Code)

	status, env = call(t, h, "POST", "/api/v1/session/register/company",
		`{"companyName":"Green","cnpj":"1","email":"g@green.example","password":"secret1","plan":"GOLD"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID", env.Code)

	status, env = call(t, h, "POST", "/api/v1/session/register/company",
		`{"companyName":"Green","cnpj":"1","email":"g@green.example","password":"secret1","plan":"premium"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	assert.Contains(t, string(env.Data), `"name":"Green"`)

	status, env = call(t, h, "POST", "/api/v1/session/register/employee",
		`{"name":"Maria","email":"maria@example.com","password":"secret1","inviteCode":"ECOWORK2025","transportation":"onibus","distance":8}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	assert.Contains(t, string(env.Data), `"companyId":"comp-1"`)
}

func TestDirectoryRoutes(t *testing.T) {
	h := newGateway(t)

	status, _ := call(t, h, "GET", "/api/v1/users/emp-1", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, _ = call(t, h, "POST", "/api/v1/session/login", `{"email":"ana@gmail.com","password":"x"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	status, env := call(t, h, "GET", "/api/v1/users/emp-1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "fallback", env.Meta.Source)
	assert.True(t, env.Meta.Degraded)
	assert.Contains(t, string(env.Data), `"name":"João Silva"`)

	status, env = call(t, h, "GET", "/api/v1/users/ghost", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, _ = call(t, h, "GET", "/api/v1/users", "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, env = call(t, h, "GET", "/api/v1/companies/comp-1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(env.Data), `"inviteCode":"ECOWORK2025"`)

	status, _ = call(t, h, "POST", "/api/v1/session/login", `{"email":"rh@empresa.com","password":"x"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	status, env = call(t, h, "GET", "/api/v1/users", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
}
