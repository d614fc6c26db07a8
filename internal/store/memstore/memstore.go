// Package memstore is an in-memory implementation of the post, category,
// user and access token stores. It enforces the same constraints as the
// PostgreSQL schema (unique slugs per collection, unique emails, category
// references) and reports violations with the store package's sentinel
// errors, so services and handlers can be tested without a database.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"postcms/internal/models"
	"postcms/internal/session"
	"postcms/internal/store"
)

// Store holds every collection behind one lock.
type Store struct {
	mu         sync.Mutex
	seq        int
	posts      map[uuid.UUID]entry[models.Post]
	categories map[uuid.UUID]entry[models.Category]
	users      map[uuid.UUID]models.User
}

// entry keeps insertion order for stable listings.
type entry[T any] struct {
	seq int
	val T
}

// New creates an empty store.
func New() *Store {
	return &Store{
		posts:      map[uuid.UUID]entry[models.Post]{},
		categories: map[uuid.UUID]entry[models.Category]{},
		users:      map[uuid.UUID]models.User{},
	}
}

// Posts returns the post collection.
func (s *Store) Posts() *Posts { return &Posts{s: s} }

// Categories returns the category collection.
func (s *Store) Categories() *Categories { return &Categories{s: s} }

// Users returns the user collection.
func (s *Store) Users() *Users { return &Users{s: s} }

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// Posts is the in-memory post collection.
type Posts struct{ s *Store }

func (p *Posts) List(_ context.Context, limit, offset int) ([]models.Post, int, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	all := make([]entry[models.Post], 0, len(p.s.posts))
	for _, e := range p.s.posts {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b entry[models.Post]) int { return cmp.Compare(a.seq, b.seq) })

	offset = max(offset, 0)
	var items []models.Post
	for i := offset; i < len(all) && i < offset+limit; i++ {
		items = append(items, all[i].val)
	}
	return items, len(all), nil
}

func (p *Posts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	e, ok := p.s.posts[id]
	if !ok {
		return nil, nil
	}
	v := e.val
	return &v, nil
}

func (p *Posts) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.slugTaken(slug, excludeID), nil
}

func (p *Posts) slugTaken(slug string, excludeID uuid.UUID) bool {
	for id, e := range p.s.posts {
		if e.val.Slug == slug && id != excludeID {
			return true
		}
	}
	return false
}

func (p *Posts) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if p.slugTaken(post.Slug, uuid.Nil) {
		return nil, fmt.Errorf("create post: %w", store.ErrDuplicateSlug)
	}
	if _, ok := p.s.categories[post.CategoryID]; !ok {
		return nil, fmt.Errorf("create post: %w", store.ErrInvalidReference)
	}

	v := *post
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	v.ContentHTML = ""
	p.s.posts[v.ID] = entry[models.Post]{seq: p.s.next(), val: v}
	return &v, nil
}

func (p *Posts) Update(_ context.Context, post *models.Post) (*models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.s.posts[post.ID]
	if !ok {
		return nil, fmt.Errorf("update post: %w", store.ErrNotFound)
	}
	if p.slugTaken(post.Slug, post.ID) {
		return nil, fmt.Errorf("update post: %w", store.ErrDuplicateSlug)
	}
	if _, ok := p.s.categories[post.CategoryID]; !ok {
		return nil, fmt.Errorf("update post: %w", store.ErrInvalidReference)
	}

	v := *post
	v.CreatedAt = e.val.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	v.ContentHTML = ""
	p.s.posts[v.ID] = entry[models.Post]{seq: e.seq, val: v}
	return &v, nil
}

func (p *Posts) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[id]; !ok {
		return false, nil
	}
	delete(p.s.posts, id)
	return true, nil
}

// Categories is the in-memory category collection.
type Categories struct{ s *Store }

func (c *Categories) List(_ context.Context) ([]models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var items []models.Category
	for _, e := range c.s.categories {
		items = append(items, e.val)
	}
	slices.SortFunc(items, func(a, b models.Category) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return items, nil
}

func (c *Categories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	e, ok := c.s.categories[id]
	if !ok {
		return nil, nil
	}
	v := e.val
	return &v, nil
}

func (c *Categories) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	_, ok := c.s.categories[id]
	return ok, nil
}

func (c *Categories) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.slugTaken(slug, excludeID), nil
}

func (c *Categories) slugTaken(slug string, excludeID uuid.UUID) bool {
	for id, e := range c.s.categories {
		if e.val.Slug == slug && id != excludeID {
			return true
		}
	}
	return false
}

func (c *Categories) Create(_ context.Context, cat *models.Category) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.slugTaken(cat.Slug, uuid.Nil) {
		return nil, fmt.Errorf("create category: %w", store.ErrDuplicateSlug)
	}

	v := *cat
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	c.s.categories[v.ID] = entry[models.Category]{seq: c.s.next(), val: v}
	return &v, nil
}

func (c *Categories) Update(_ context.Context, cat *models.Category) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	e, ok := c.s.categories[cat.ID]
	if !ok {
		return nil, fmt.Errorf("update category: %w", store.ErrNotFound)
	}
	if c.slugTaken(cat.Slug, cat.ID) {
		return nil, fmt.Errorf("update category: %w", store.ErrDuplicateSlug)
	}

	v := *cat
	v.CreatedAt = e.val.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	c.s.categories[v.ID] = entry[models.Category]{seq: e.seq, val: v}
	return &v, nil
}

func (c *Categories) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.categories[id]; !ok {
		return false, nil
	}
	for _, e := range c.s.posts {
		if e.val.CategoryID == id {
			return false, fmt.Errorf("delete category: %w", store.ErrInUse)
		}
	}
	delete(c.s.categories, id)
	return true, nil
}

// Users is the in-memory user collection.
type Users struct{ s *Store }

// Create adds a user with a bcrypt hash of password. The minimum cost is
// used to keep tests fast.
func (u *Users) Create(_ context.Context, email, password, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == email {
			return nil, fmt.Errorf("create user: %w", store.ErrDuplicateEmail)
		}
	}

	now := time.Now().UTC()
	v := models.User{
		ID: uuid.New(), Email: email, Name: name, PasswordHash: string(hash),
		CreatedAt: now, UpdatedAt: now,
	}
	u.s.users[v.ID] = v
	return &v, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, v := range u.s.users {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, nil
}

func (u *Users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	v, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (u *Users) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	v, ok := u.s.users[id]
	if !ok {
		return fmt.Errorf("set totp secret: %w", store.ErrNotFound)
	}
	v.TOTPSecret = &secret
	v.TOTPEnabled = false
	u.s.users[id] = v
	return nil
}

func (u *Users) EnableTOTP(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	v, ok := u.s.users[id]
	if !ok {
		return fmt.Errorf("enable totp: %w", store.ErrNotFound)
	}
	v.TOTPEnabled = true
	u.s.users[id] = v
	return nil
}

func (u *Users) Delete(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, id)
	return nil
}

// Tokens is an in-memory access token store with expiry.
type Tokens struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]session.Data
}

// NewTokens creates a token store issuing tokens valid for ttl.
func NewTokens(ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Tokens{ttl: ttl, tokens: map[string]session.Data{}}
}

func (t *Tokens) Issue(_ context.Context, data *session.Data) (string, time.Time, error) {
	token := uuid.NewString() + uuid.NewString()
	data.CreatedAt = time.Now().UTC()
	data.ExpiresAt = data.CreatedAt.Add(t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = *data
	return token, data.ExpiresAt, nil
}

func (t *Tokens) Lookup(_ context.Context, token string) (*session.Data, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.tokens[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(d.ExpiresAt) {
		delete(t.tokens, token)
		return nil, nil
	}
	return &d, nil
}

func (t *Tokens) Revoke(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, token)
	return nil
}

// Expire forces token to be treated as expired.
func (t *Tokens) Expire(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.tokens[token]; ok {
		d.ExpiresAt = time.Now().Add(-time.Second)
		t.tokens[token] = d
	}
}
