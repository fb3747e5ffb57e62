package users

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const noExpiry = 0

var _ Store = (*CachedStore)(nil)

// CachedStore is a read-through cache in front of a remote credential store.
// Credentials never change once added, so cached entries never go stale.
// Unknown users are not cached; they may register at any time.
type CachedStore struct {
	store Store
	cache *freecache.Cache
}

func NewCachedStore(store Store, cacheSizeBytes int) *CachedStore {
	return &CachedStore{
		store: store,
		cache: freecache.NewCache(cacheSizeBytes),
	}
}

func (s *CachedStore) Add(ctx context.Context, username, password string) error {
	if err := s.store.Add(ctx, username, password); err != nil {
		return err
	}
	s.set(username, password)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, username string) (string, error) {
	if password, err := s.cache.Get([]byte(username)); err == nil {
		return string(password), nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("credentials cache get [%s]: %s", username, err)
	}

	password, err := s.store.Get(ctx, username)
	if err != nil {
		return "", err
	}
	s.set(username, password)
	return password, nil
}

func (s *CachedStore) set(username, password string) {
	if err := s.cache.Set([]byte(username), []byte(password), noExpiry); err != nil {
		log.Warnf("credentials cache set [%s]: %s", username, err)
	}
}

// Collectors exposes the cache hit rate and size.
func (s *CachedStore) Collectors(namespace, subsystem string) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "credentials_cache_hit_rate",
			Help:      "Hit rate of the in-memory credentials cache",
		}, s.cache.HitRate),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "credentials_cache_entries",
			Help:      "Number of entries in the in-memory credentials cache",
		}, func() float64 {
			return float64(s.cache.EntryCount())
		}),
	}
}
