package tree

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bobg/adbsync/session"
)

// statEntry is one cached remote stat result.
type statEntry struct {
	mode, size, mtime uint32
}

// CachingSession wraps a Session, caching Stat results for a
// recently-seen set of remote paths, mirroring the teacher's LRU
// blob-store cache (store/lru/lru.go) but keyed on path instead of
// content ref. Only Stat is cached: List and the transfer operations
// always have to touch the wire, same as the teacher's cache leaving
// ListRefs uncached and passing straight through.
type CachingSession struct {
	session.Session
	c *lru.Cache
}

// NewCaching wraps s, caching up to size Stat results.
func NewCaching(s session.Session, size int) (*CachingSession, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachingSession{Session: s, c: c}, nil
}

// Stat implements session.Session, consulting the cache before
// falling through to the wrapped Session.
func (c *CachingSession) Stat(path string) (uint32, uint32, uint32, error) {
	if v, ok := c.c.Get(path); ok {
		e := v.(statEntry)
		return e.mode, e.size, e.mtime, nil
	}
	mode, size, mtime, err := c.Session.Stat(path)
	if err != nil {
		return 0, 0, 0, err
	}
	c.c.Add(path, statEntry{mode: mode, size: size, mtime: mtime})
	return mode, size, mtime, nil
}

// Invalidate drops path's cached stat, called after a push or sync
// that may have changed what the remote would report.
func (c *CachingSession) Invalidate(path string) {
	c.c.Remove(path)
}
