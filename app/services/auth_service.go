// Package services holds the business workflows between the HTTP controllers
// and the stores. Services take store interfaces so the workflows are
// testable without a running MongoDB.
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/pkg/auth"
	"github.com/ganzorig/mishil/pkg/logger"
)

// ErrInvalidCredentials covers both unknown phone and wrong PIN; signin never
// reveals which one failed.
var ErrInvalidCredentials = errors.New("invalid phone number or PIN")

// SignupInput is the registration payload.
type SignupInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required,digits=4"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"nullable,email"`
}

// SigninInput is the login payload.
type SigninInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// AuthSession is what a successful signup or signin returns.
type AuthSession struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthService owns registration, login and profile maintenance.
type AuthService struct {
	users repositories.UserStore
}

func NewAuthService(users repositories.UserStore) *AuthService {
	return &AuthService{users: users}
}

// Signup registers an account and signs it in. The password must be a
// 4-digit PIN; phone numbers are intentionally not checked for uniqueness.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthSession, error) {
	hash, err := auth.HashPIN(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Name:        in.Name,
		Password:    hash,
		Role:        models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user signed up", "userId", user.ID.Hex())
	return &AuthSession{Token: token, User: user.Public()}, nil
}

// Signin checks the PIN against the first account matching the phone number.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthSession, error) {
	user, err := s.users.FindByPhone(ctx, in.PhoneNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPIN(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &AuthSession{Token: token, User: user.Public()}, nil
}

// ProfileInput is the editable slice of a user profile. Empty fields are
// left unchanged.
type ProfileInput struct {
	Name    string          `json:"name"`
	Email   string          `json:"email" validate:"nullable,email"`
	Address *models.Address `json:"address"`
}

// UpdateProfile applies in to the user's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Address != nil {
		user.Address = in.Address
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
