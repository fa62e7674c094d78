// Package cache holds the server's in-memory snapshot of the latest
// aggregated batch and its trending topics.
package cache

import (
	"sync"
	"time"

	"nairobell/aggregator/internal/models"
	"nairobell/aggregator/internal/trends"
)

// Cache is a read-mostly snapshot guarded by a RWMutex. Set replaces
// the whole snapshot atomically; readers receive copies so they can
// filter and re-sort freely.
type Cache struct {
	mu          sync.RWMutex
	articles    []models.Article
	topics      []trends.Topic
	lastUpdated time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// Set replaces the snapshot.
func (c *Cache) Set(articles []models.Article, topics []trends.Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = articles
	c.topics = topics
	c.lastUpdated = time.Now().UTC()
}

// Articles returns a copy of the cached batch and the snapshot time.
func (c *Cache) Articles() ([]models.Article, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Article, len(c.articles))
	copy(out, c.articles)
	return out, c.lastUpdated
}

// Topics returns a copy of the cached trending topics.
func (c *Cache) Topics() []trends.Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]trends.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Len returns the number of cached articles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.articles)
}
