package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/auth"
)

func TestSignupAndSignin(t *testing.T) {
	users := newFakeUsers()
	svc := services.NewAuthService(users)

	session, err := svc.Signup(context.Background(), services.SignupInput{
		PhoneNumber: "99112233",
		Password:    "1234",
		Name:        "Bolor",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.Empty(t, session.User.Password, "response must not leak the hash")

	claims, err := auth.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID.Hex(), claims.UserID)

	signin, err := svc.Signin(context.Background(), services.SigninInput{
		PhoneNumber: "99112233",
		Password:    "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signin.User.ID)
}

func TestSignupRejectsNonPIN(t *testing.T) {
	svc := services.NewAuthService(newFakeUsers())

	_, err := svc.Signup(context.Background(), services.SignupInput{
		PhoneNumber: "99112233",
		Password:    "longpassword",
		Name:        "Bolor",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidPIN)
}

func TestSigninDoesNotRevealWhichFieldFailed(t *testing.T) {
	users := newFakeUsers()
	svc := services.NewAuthService(users)
	_, err := svc.Signup(context.Background(), services.SignupInput{
		PhoneNumber: "99112233", Password: "1234", Name: "Bolor",
	})
	require.NoError(t, err)

	_, errUnknown := svc.Signin(context.Background(), services.SigninInput{
		PhoneNumber: "00000000", Password: "1234",
	})
	_, errWrongPIN := svc.Signin(context.Background(), services.SigninInput{
		PhoneNumber: "99112233", Password: "9999",
	})

	assert.ErrorIs(t, errUnknown, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPIN, services.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPIN.Error())
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	users := newFakeUsers()
	svc := services.NewAuthService(users)
	session, err := svc.Signup(context.Background(), services.SignupInput{
		PhoneNumber: "99112233", Password: "1234", Name: "Bolor", Email: "b@example.com",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), session.User.ID, services.ProfileInput{
		Address: &models.Address{Address: "Ulaanbaatar"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bolor", updated.Name)
	assert.Equal(t, "b@example.com", updated.Email)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Ulaanbaatar", updated.Address.Address)
}
