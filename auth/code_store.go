package auth

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"
)

// TimeProvider lets tests control expiry.
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

type issuedCode struct {
	code      string
	expiresAt time.Time
}

// CodeStore holds verification codes for the email login flow. Codes
// carry a TTL and are consumed on successful verification; a cleanup
// goroutine sweeps expired entries so abandoned logins don't accumulate.
type CodeStore struct {
	mu    sync.RWMutex
	codes map[string]issuedCode
	ttl   time.Duration
	clock TimeProvider

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

func NewCodeStore(ttl time.Duration) *CodeStore {
	return &CodeStore{
		codes: make(map[string]issuedCode),
		ttl:   ttl,
		clock: &realTimeProvider{},
	}
}

// Issue creates a fresh 6-digit code for email, replacing any code
// already pending for that address.
func (s *CodeStore) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	s.codes[email] = issuedCode{
		code:      code,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return code, nil
}

// Verify checks code against the pending entry for email and consumes
// it on success. Expired or unknown codes fail.
func (s *CodeStore) Verify(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok {
		return false
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.codes, email)
		return false
	}
	if entry.code != code {
		return false
	}

	delete(s.codes, email)
	return true
}

// StartCleanup begins the periodic sweep of expired codes.
func (s *CodeStore) StartCleanup(interval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup()
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *CodeStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

func (s *CodeStore) performCleanup() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for email, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, email)
			log.Printf("Deleted verification code for %s due to expiration", email)
		}
	}
}
