package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/example/skillbuilder/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email or password don't match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountExists is returned when the email or username is taken
	ErrAccountExists = errors.New("an account with this email or username already exists")
	// ErrInvalidInput is returned when a sign-up field is blank
	ErrInvalidInput = errors.New("invalid input")
)

type account struct {
	user         models.User
	email        string
	passwordHash []byte
}

// Service is an in-process account registry. It is not persisted.
type Service struct {
	mu       sync.RWMutex
	accounts []account
	cost     int
}

// NewService creates the registry with the demo account
// test@example.com / password123
func NewService() (*Service, error) {
	return NewServiceWithCost(bcrypt.DefaultCost)
}

// NewServiceWithCost is NewService with a custom bcrypt cost
func NewServiceWithCost(cost int) (*Service, error) {
	s := &Service{cost: cost}
	fullName := "Test User"
	if _, err := s.add(models.User{ID: "user-1", Username: "testuser", FullName: &fullName}, "test@example.com", "password123"); err != nil {
		return nil, err
	}
	return s, nil
}

// SignIn returns the profile of the account with email and password.
// The email comparison ignores case.
func (s *Service) SignIn(email, password string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, a := range s.accounts {
		if !strings.EqualFold(a.email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		user := a.user
		return &user, nil
	}
	return nil, ErrInvalidCredentials
}

// SignUp creates an account with id "user-<n+1>" and returns its profile
func (s *Service) SignUp(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.email, email) || strings.EqualFold(a.user.Username, username) {
			return nil, ErrAccountExists
		}
	}
	user := models.User{ID: fmt.Sprintf("user-%d", len(s.accounts)+1), Username: username}
	return s.add(user, email, password)
}

// User returns the profile of an account id
func (s *Service) User(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			user := a.user
			return &user, true
		}
	}
	return nil, false
}

// add must be called with mu held or during construction
func (s *Service) add(user models.User, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	s.accounts = append(s.accounts, account{user: user, email: email, passwordHash: hash})
	return &user, nil
}
