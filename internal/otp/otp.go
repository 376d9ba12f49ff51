// Package otp issues and verifies short numeric one-time codes kept in memory.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"
)

type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

func (p Purpose) Valid() bool {
	return p == PurposeVerify || p == PurposeReset
}

var (
	ErrOTPNotFound        = errors.New("otp not found")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrOTPTooManyAttempts = errors.New("otp attempts exhausted")
	ErrOTPCooldown        = errors.New("otp resend cooldown")
)

const codeLength = 6

type Config struct {
	TTL         time.Duration
	MaxAttempts int
	Cooldown    time.Duration
}

func DefaultConfig() Config {
	return Config{TTL: 10 * time.Minute, MaxAttempts: 5, Cooldown: time.Minute}
}

type entry struct {
	code     string
	expires  time.Time
	issued   time.Time
	attempts int
}

type Store struct {
	cfg     Config
	now     func() time.Time
	rand    io.Reader
	log     *slog.Logger
	mu      sync.Mutex
	entries map[string]*entry

	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(cfg Config, opts ...Option) *Store {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}

	s := &Store{
		cfg:     cfg,
		now:     time.Now,
		rand:    rand.Reader,
		log:     slog.Default(),
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(purpose Purpose, identifier string) string {
	return string(purpose) + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// Issue creates a fresh code for identifier, replacing any earlier one.
// A live code issued less than Cooldown ago yields ErrOTPCooldown.
func (s *Store) Issue(purpose Purpose, identifier string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	k := key(purpose, identifier)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[k]; ok && now.Before(e.expires) && now.Sub(e.issued) < s.cfg.Cooldown {
		return "", ErrOTPCooldown
	}
	s.entries[k] = &entry{code: code, expires: now.Add(s.cfg.TTL), issued: now}
	return code, nil
}

// Verify consumes the code on success. Wrong guesses count toward
// MaxAttempts; the code is dropped once they are exhausted.
func (s *Store) Verify(purpose Purpose, identifier, code string) error {
	k := key(purpose, identifier)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		return ErrOTPNotFound
	}
	if !now.Before(e.expires) {
		delete(s.entries, k)
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(strings.TrimSpace(code))) == 1 {
		delete(s.entries, k)
		return nil
	}

	e.attempts++
	if e.attempts >= s.cfg.MaxAttempts {
		delete(s.entries, k)
		return ErrOTPTooManyAttempts
	}
	return ErrOTPInvalid
}

// Sweep removes expired entries and reports how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps on every interval tick until ctx is done or Close is called.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("otp_sweep", "removed", n)
			}
		}
	}
}

func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) generate() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(s.rand, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}

// Channel names the delivery route for identifier.
func Channel(identifier string) string {
	if strings.Contains(identifier, "@") {
		return "email"
	}
	return "sms"
}
