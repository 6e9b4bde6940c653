package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/orderflow-api/internal/application/auth"
	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/orderflow-api/pkg/jwt"
)

const (
	testTenant = "00000000-0000-0000-0000-000000000001"
	testSecret = "test-secret-key-for-unit-tests"
)

type memUserRepo struct {
	byEmail map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*entity.User)}
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}
func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.byEmail[email], nil
}
func (r *memUserRepo) GetByEmailAndTenant(email, tenantID string) (*entity.User, error) {
	u := r.byEmail[email]
	if u == nil || u.TenantID != tenantID {
		return nil, nil
	}
	return u, nil
}

type memTenantRepo struct{}

func (r *memTenantRepo) Create(t *entity.Tenant) error { return nil }
func (r *memTenantRepo) GetByID(id string) (*entity.Tenant, error) {
	if id != testTenant {
		return nil, nil
	}
	return &entity.Tenant{ID: id, Name: "Demo Distribuidora"}, nil
}

func buildAuthUC(users *memUserRepo) *auth.AuthUseCase {
	return auth.NewAuthUseCase(users, &memTenantRepo{}, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "orderflow-test",
	})
}

func TestRegisterUser_CreaConRolPorDefecto(t *testing.T) {
	users := newMemUserRepo()
	uc := buildAuthUC(users)

	resp, err := uc.RegisterUser(dto.RegisterRequest{
		TenantID: testTenant,
		Email:    "ana@demo.local",
		Password: "demo1234",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleOperator, resp.Role)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "ana@demo.local", resp.Name, "sin nombre explícito usa el email")

	// El hash persistido no es el password en claro
	stored := users.byEmail["ana@demo.local"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "demo1234", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("demo1234")))
}

func TestRegisterUser_EmailDuplicadoEnElTenant(t *testing.T) {
	users := newMemUserRepo()
	uc := buildAuthUC(users)

	_, err := uc.RegisterUser(dto.RegisterRequest{TenantID: testTenant, Email: "ana@demo.local", Password: "demo1234"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{TenantID: testTenant, Email: "ana@demo.local", Password: "otra1234"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_TenantInexistente(t *testing.T) {
	uc := buildAuthUC(newMemUserRepo())

	_, err := uc.RegisterUser(dto.RegisterRequest{
		TenantID: "11111111-1111-1111-1111-111111111111",
		Email:    "ana@demo.local",
		Password: "demo1234",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterUser_CamposObligatorios(t *testing.T) {
	uc := buildAuthUC(newMemUserRepo())

	casos := []dto.RegisterRequest{
		{Email: "ana@demo.local", Password: "demo1234"},
		{TenantID: testTenant, Password: "demo1234"},
		{TenantID: testTenant, Email: "ana@demo.local"},
	}
	for _, in := range casos {
		_, err := uc.RegisterUser(in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestLogin_TokenValidoConClaims(t *testing.T) {
	users := newMemUserRepo()
	uc := buildAuthUC(users)
	_, err := uc.RegisterUser(dto.RegisterRequest{TenantID: testTenant, Email: "ana@demo.local", Password: "demo1234", Role: entity.RoleAdmin})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "ana@demo.local", Password: "demo1234"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, tenantID, role, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, testTenant, tenantID)
	assert.Equal(t, entity.RoleAdmin, role)
	assert.Equal(t, resp.User.ID, userID)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	users := newMemUserRepo()
	uc := buildAuthUC(users)
	_, err := uc.RegisterUser(dto.RegisterRequest{TenantID: testTenant, Email: "ana@demo.local", Password: "demo1234"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@demo.local", Password: "incorrecto"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc := buildAuthUC(newMemUserRepo())

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@demo.local", Password: "demo1234"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	users := newMemUserRepo()
	uc := buildAuthUC(users)
	_, err := uc.RegisterUser(dto.RegisterRequest{TenantID: testTenant, Email: "ana@demo.local", Password: "demo1234"})
	require.NoError(t, err)
	users.byEmail["ana@demo.local"].Status = "disabled"

	_, err = uc.Login(dto.LoginRequest{Email: "ana@demo.local", Password: "demo1234"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
