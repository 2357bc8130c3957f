package directory

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/fallback"
)

func offline(t *testing.T) (*UseCase, *fallback.Dataset) {
	t.Helper()
	fb := fallback.New()
	client := apiclient.New("http://backend.test",
		apiclient.WithHTTPClient(&fasthttp.Client{Dial: func(string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		}}),
		apiclient.WithFallback(fb),
	)
	return New(client, nil), fb
}

var (
	employee = &domain.Identity{ID: fallback.SeedEmployeeID, Kind: domain.KindEmployee, CompanyID: fallback.SeedCompanyID}
	company  = &domain.Identity{ID: fallback.SeedCompanyID, Kind: domain.KindCompany, CompanyID: fallback.SeedCompanyID}
)

func TestUser(t *testing.T) {
	uc, _ := offline(t)
	ctx := context.Background()

	user, source, err := uc.User(ctx, employee, fallback.SeedEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, apiclient.SourceFallback, source)
	assert.Equal(t, "João Silva", user.DisplayName)
	assert.Equal(t, domain.KindEmployee, user.Kind)

	_, _, err = uc.User(ctx, employee, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = uc.User(ctx, employee, " ")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, _, err = uc.User(ctx, nil, fallback.SeedEmployeeID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUsersListsOwnCompany(t *testing.T) {
	uc, fb := offline(t)
	ctx := context.Background()

	other, _, err := fb.RegisterCompany(fallback.CompanyRegistration{Name: "Other", Email: "empresa@other.example", Password: "pw", Plan: domain.PlanBasic})
	require.NoError(t, err)

	users, source, err := uc.Users(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, apiclient.SourceFallback, source)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, other.ID, u.ID)
	}

	_, _, err = uc.Users(ctx, employee)
	assert.ErrorIs(t, err, domain.ErrCompanyOnly)

	_, _, err = uc.Users(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestCompany(t *testing.T) {
	uc, _ := offline(t)
	ctx := context.Background()

	profile, source, err := uc.Company(ctx, employee, "")
	require.NoError(t, err)
	assert.Equal(t, apiclient.SourceFallback, source)
	assert.Equal(t, fallback.SeedInviteCode, profile.InviteCode)
	assert.Equal(t, domain.PlanPremium, profile.Plan)

	profile, _, err = uc.Company(ctx, company, fallback.SeedCompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Tech Solutions Ltda", profile.Name)

	_, _, err = uc.Company(ctx, employee, "comp-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = uc.Company(ctx, &domain.Identity{ID: "loner", Kind: domain.KindEmployee}, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, _, err = uc.Company(ctx, nil, fallback.SeedCompanyID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
