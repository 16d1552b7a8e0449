package pipeline

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// Dedup remembers which note each recently imported content hash produced.
// Imports of the same content run one at a time; concurrent callers share
// the first one's result.
type Dedup struct {
	recent *ttlcache.Cache[string, string]
	flight singleflight.Group
}

// NewDedup creates a Dedup that forgets a hash after ttl.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{
		recent: ttlcache.New[string, string](ttlcache.WithTTL[string, string](ttl)),
	}
}

// Start runs expiry until Stop is called.
func (d *Dedup) Start() { d.recent.Start() }

// Stop ends expiry. Only call it after Start.
func (d *Dedup) Stop() { d.recent.Stop() }

// claim returns the note already holding hash when valid reports it still
// exists. Otherwise it runs create and remembers the path it returns.
// existing is true when the caller did not create the note itself, either
// from an earlier import or from a concurrent one it joined.
func (d *Dedup) claim(hash string, valid func(string) bool, create func() (string, error)) (path string, existing bool, err error) {
	ran := false
	v, err, _ := d.flight.Do(hash, func() (any, error) {
		if item := d.recent.Get(hash); item != nil {
			if p := item.Value(); valid(p) {
				return p, nil
			}
			d.recent.Delete(hash)
		}
		ran = true
		p, err := create()
		if err != nil {
			return "", err
		}
		d.recent.Set(hash, p, ttlcache.DefaultTTL)
		return p, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), !ran, nil
}
