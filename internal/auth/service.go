// Package auth provides account signup/login with bcrypt-hashed passwords,
// JWT session tokens, and per-user saved-opportunity lists. State is held in
// memory; accounts live for the process lifetime, like the scan cache.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type savedEntry struct {
	oppID   string
	savedAt time.Time
}

// Service is the in-memory account store.
type Service struct {
	mu      sync.RWMutex
	byEmail map[string]User
	saved   map[uuid.UUID][]savedEntry
}

func NewService() *Service {
	return &Service{
		byEmail: make(map[string]User),
		saved:   make(map[uuid.UUID][]savedEntry),
	}
}

func (s *Service) Signup(req SignupRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCreds
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mu.Unlock()
		return nil, ErrUserExists
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.byEmail[email] = user
	s.mu.Unlock()

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.RLock()
	user, exists := s.byEmail[email]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrInvalidCreds
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

func generateToken(userID uuid.UUID) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// Saved opportunities. Opportunity ids are the scan pipeline's
// source-qualified strings, not uuids.

func (s *Service) SaveOpportunity(userID uuid.UUID, oppID string) error {
	oppID = strings.TrimSpace(oppID)
	if oppID == "" {
		return errors.New("opportunity id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.saved[userID] {
		if entry.oppID == oppID {
			return nil
		}
	}
	s.saved[userID] = append(s.saved[userID], savedEntry{oppID: oppID, savedAt: time.Now().UTC()})
	return nil
}

func (s *Service) UnsaveOpportunity(userID uuid.UUID, oppID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.saved[userID]
	for i, entry := range entries {
		if entry.oppID == oppID {
			s.saved[userID] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// SavedOpportunityIDs returns the user's saved ids, most recently saved
// first.
func (s *Service) SavedOpportunityIDs(userID uuid.UUID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]savedEntry, len(s.saved[userID]))
	copy(entries, s.saved[userID])
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].savedAt.After(entries[j].savedAt)
	})

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.oppID)
	}
	return ids
}
