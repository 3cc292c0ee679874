package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Post is the blog's only entity.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is an in-memory post store standing in for a generated ORM client.
type Store struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

func NewStore() *Store {
	return &Store{posts: make(map[string]*Post)}
}

// Add creates a post and returns it.
func (s *Store) Add(title, body string) *Post {
	p := &Post{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.posts[p.ID] = p
	s.mu.Unlock()
	return p
}

// Post returns the post with the given id, or nil.
func (s *Store) Post(id string) *Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts[id]
}

// Posts returns all posts, newest first.
func (s *Store) Posts() []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
