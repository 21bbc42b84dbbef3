package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/repository"
)

// memStore is an in-memory stand-in for the gorm repositories. It
// implements the user, token, password-reset and media repository
// interfaces with the same error contracts, including unique-violation
// errors shaped like the Postgres driver's.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	users   map[uint]*domain.User
	tokens  map[string]*domain.AuthToken
	resets  map[string]*domain.PasswordReset
	avatars map[uint]*domain.Avatar
	bgs     map[uint]*domain.BackgroundImage
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[uint]*domain.User{},
		tokens:  map[string]*domain.AuthToken{},
		resets:  map[string]*domain.PasswordReset{},
		avatars: map[uint]*domain.Avatar{},
		bgs:     map[uint]*domain.BackgroundImage{},
	}
}

func (m *memStore) CreateUser(user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}

	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return user, nil
}

func (m *memStore) FindUserByEmail(email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *memStore) FindUserByID(userID uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SaveUser(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}

	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) DeleteUserCascade(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.avatars, userID)
	delete(m.bgs, userID)
	for hash, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	delete(m.users, userID)
	return nil
}

func (m *memStore) CreateToken(token *domain.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[token.TokenHash]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_auth_tokens_token_hash"}
	}
	m.nextID++
	token.ID = m.nextID
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.TokenHash] = &cp
	return nil
}

func (m *memStore) FindByHash(hash string) (*domain.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[hash]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) DeleteByHash(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, hash)
	return nil
}

func (m *memStore) DeleteAllForUser(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for hash, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

func (m *memStore) Rotate(oldHash string, newToken *domain.AuthToken) error {
	if err := m.CreateToken(newToken); err != nil {
		return err
	}
	return m.DeleteByHash(oldHash)
}

func (m *memStore) UpsertTicket(ticket *domain.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *ticket
	cp.CreatedAt = time.Now()
	m.resets[ticket.Email] = &cp
	return nil
}

func (m *memStore) FindByEmail(email string) (*domain.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.resets[email]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) DeleteByEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.resets, email)
	return nil
}

func (m *memStore) FindAvatarByUserID(userID uint) (*domain.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.avatars[userID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ReplaceAvatar(avatar *domain.Avatar) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldPath string
	if existing, ok := m.avatars[avatar.UserID]; ok {
		oldPath = existing.Path
	}
	m.nextID++
	avatar.ID = m.nextID
	cp := *avatar
	m.avatars[avatar.UserID] = &cp
	return oldPath, nil
}

func (m *memStore) FindBackgroundByUserID(userID uint) (*domain.BackgroundImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bgs[userID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) UpsertBackground(bg *domain.BackgroundImage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldPath string
	if existing, ok := m.bgs[bg.UserID]; ok {
		oldPath = existing.Path
		bg.ID = existing.ID
	} else {
		m.nextID++
		bg.ID = m.nextID
	}
	cp := *bg
	m.bgs[bg.UserID] = &cp
	return oldPath, nil
}

func (m *memStore) tokenCountForUser(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// fakeProducer records published events and can be told to fail.
type fakeProducer struct {
	mu       sync.Mutex
	events   []publishedEvent
	failKeys map[string]bool
}

type publishedEvent struct {
	Key   string
	Value []byte
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{failKeys: map[string]bool{}}
}

func (p *fakeProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failKeys[string(key)] {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, publishedEvent{Key: string(key), Value: append([]byte(nil), value...)})
	return nil
}

func (p *fakeProducer) eventsWithKey(key string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []publishedEvent
	for _, e := range p.events {
		if e.Key == key {
			out = append(out, e)
		}
	}
	return out
}

// fakeUploader records blob writes and deletes.
type fakeUploader struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	deleted    []string
	failUpload bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{blobs: map[string][]byte{}}
}

func (u *fakeUploader) UploadBytes(_ context.Context, folder, filename string, b []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.failUpload {
		return "", errors.New("upload failed")
	}
	path := folder + "/" + filename
	u.blobs[path] = append([]byte(nil), b...)
	return "https://blobs.test/" + path, nil
}

func (u *fakeUploader) Delete(_ context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.blobs, path)
	u.deleted = append(u.deleted, path)
	return nil
}
