package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"LinkUp/internal/config"
	"LinkUp/internal/pkg"
	"LinkUp/internal/repository/redis"
)

func newTestIssuer() *pkg.TokenIssuer {
	return pkg.NewTokenIssuer(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
}

// memSessions 内存版会话存储
type memSessions struct {
	mu       sync.Mutex
	sessions map[uint64]redis.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[uint64]redis.Session{}}
}

func (m *memSessions) Save(_ context.Context, userID uint64, s redis.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, userID uint64) (*redis.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, redis.ErrTokenNotFound
	}
	return &s, nil
}

func (m *memSessions) Rotate(_ context.Context, userID uint64, refreshID string, next redis.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || s.RefreshID != refreshID {
		return false, nil
	}
	m.sessions[userID] = next
	return true, nil
}

func (m *memSessions) Extend(context.Context, uint64) error { return nil }

func (m *memSessions) Delete(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// memCodes 与 redis 版一致：错误次数达到上限后验证码作废
type memCodes struct {
	pending   map[string]string
	confirmed map[string]string
	attempts  map[string]int
}

func newMemCodes() *memCodes {
	return &memCodes{pending: map[string]string{}, confirmed: map[string]string{}, attempts: map[string]int{}}
}

func (m *memCodes) SavePending(_ context.Context, email, code string) error {
	m.pending[email] = code
	return nil
}

func (m *memCodes) Confirm(_ context.Context, email string) error {
	code, ok := m.pending[email]
	if !ok {
		return redis.ErrCodeConfirmedFailed
	}
	delete(m.pending, email)
	delete(m.attempts, email)
	m.confirmed[email] = code
	return nil
}

func (m *memCodes) DeletePending(_ context.Context, email string) error {
	delete(m.pending, email)
	return nil
}

func (m *memCodes) Consume(_ context.Context, email, code string) (bool, error) {
	saved, ok := m.confirmed[email]
	if !ok {
		return false, redis.ErrCodeNotFound
	}
	if saved != code {
		m.attempts[email]++
		if m.attempts[email] >= redis.MaxCodeAttempts {
			delete(m.confirmed, email)
			delete(m.attempts, email)
		}
		return false, nil
	}
	delete(m.confirmed, email)
	delete(m.attempts, email)
	return true, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	fail bool
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}
