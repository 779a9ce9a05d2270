package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/auth"
	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/application/usecase"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/memory/memorytest"
	pkgjwt "github.com/jhoicas/tienda-backoffice/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func newAuth() (*auth.AuthUseCase, *usecase.UserUseCase) {
	store := memorytest.NewStore()
	users := usecase.NewUserUseCase(store.Users())
	return auth.NewAuthUseCase(store.Users(), users, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}), users
}

func TestRegister_SiempreComoCustomer(t *testing.T) {
	uc, _ := newAuth()
	out, err := uc.Register(context.Background(), dto.RegisterRequest{
		Username: "carla", Email: "carla@tienda.com", Password: "secreto123",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, out.Roles)
}

func TestLogin_TokenConRoles(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()
	created, err := users.Create(ctx, dto.CreateUserRequest{
		Username: "jefe", Email: "jefe@tienda.com", Password: "secreto123", Roles: []string{"shift_manager"},
	})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "JEFE@tienda.com", Password: "secreto123"})
	require.NoError(t, err)
	userID, roles, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
	assert.Equal(t, []string{"shift_manager"}, roles)

	me, err := uc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "jefe", me.Username)
}

func TestLogin_CredencialesInvalidasSonIndistinguibles(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.Register(ctx, dto.RegisterRequest{Username: "carla", Email: "carla@tienda.com", Password: "secreto123"})
	require.NoError(t, err)

	_, errPass := uc.Login(ctx, dto.LoginRequest{Email: "carla@tienda.com", Password: "otra-clave"})
	_, errMail := uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.com", Password: "secreto123"})
	assert.True(t, errors.Is(errPass, domain.ErrUnauthorized))
	assert.True(t, errors.Is(errMail, domain.ErrUnauthorized))
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()
	inactive := dto.StrictBool(false)
	_, err := users.Create(ctx, dto.CreateUserRequest{
		Username: "baja", Email: "baja@tienda.com", Password: "secreto123", IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "baja@tienda.com", Password: "secreto123"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
