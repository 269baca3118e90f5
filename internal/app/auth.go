package app

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
)

// AuthService manages the single user's password and sessions.
type AuthService struct {
	db  *store.DB
	log *logger.Logger
}

func NewAuthService(db *store.DB, log *logger.Logger) *AuthService {
	return &AuthService{db: db, log: log.WithComponent("auth")}
}

// Initialized reports whether first-run setup has happened.
func (s *AuthService) Initialized() (bool, error) {
	return s.db.CheckInitialized()
}

// Setup stores the password on first run. It can only ever happen once.
func (s *AuthService) Setup(password string) error {
	initialized, err := s.db.CheckInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}
	if password == "" {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.CreateUser(string(hashed)); err != nil {
		return err
	}
	if err := s.db.Initialize(); err != nil {
		return err
	}
	s.log.Info("First-run setup completed")
	return nil
}

// Login checks the password and mints a session token.
func (s *AuthService) Login(password string) (string, error) {
	hashed, err := s.db.GetHashedPassword()
	if err != nil {
		return "", err
	}
	if hashed == "" {
		return "", ErrNotInitialized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.db.SetSession(token, constants.SessionMaxAge); err != nil {
		return "", err
	}
	return token, nil
}

// Logout drops the session token.
func (s *AuthService) Logout(token string) error {
	return s.db.DeleteSession(token)
}

// Authenticate reports whether the token names a live session.
func (s *AuthService) Authenticate(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	session, err := s.db.GetSession(token)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}
