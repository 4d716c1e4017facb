package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"devconnect/internal/domain"
	"devconnect/internal/repository"
)

// UserService coordina registro, login y lookup de usuarios.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	rateLimiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, rateLimiter LoginRateLimiter) *UserService {
	if rateLimiter == nil {
		rateLimiter = NewLoginRateLimiter(loginWindow, loginMaxAttempts)
	}
	return &UserService{
		logger:      logger,
		users:       users,
		rateLimiter: rateLimiter,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
)

const (
	bcryptCost       = 10
	loginWindow      = 10 * time.Minute
	loginMaxAttempts = 10
)

// Register crea el usuario con password hasheado y avatar derivado del email.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	password := input.Password
	if name == "" || email == "" || len(password) < 6 {
		return domain.User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Avatar:       gravatarURL(email),
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// El índice único sobre email cierra la ventana entre el
		// chequeo de existencia y el insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate valida credenciales. Email desconocido y password incorrecto
// devuelven exactamente el mismo error para no filtrar cuál falló.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	if s.rateLimiter != nil && !s.rateLimiter.Allow(emailAddr) {
		if s.logger != nil {
			s.logger.Warn("login rate limited", zap.String("email", emailAddr))
		}
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID devuelve el usuario autenticado; el hash nunca se serializa.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// gravatarURL deriva el avatar de forma determinística desde el email.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(email))
	hash := hex.EncodeToString(sum[:])
	params := url.Values{}
	params.Set("s", "200")
	params.Set("r", "pg")
	params.Set("d", "mm")
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?%s", hash, params.Encode())
}

// LoginRateLimiter limita intentos de login por clave.
type LoginRateLimiter interface {
	Allow(key string) bool
}

type loginRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewLoginRateLimiter crea un rate limiter en memoria.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *loginRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}
