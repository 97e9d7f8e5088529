package memory

import (
	"time"

	"notebook-studio-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DeckCache holds the working copy of slide decks while the user edits
// overlay elements. Entries expire after a period of inactivity; the overlay
// service reloads from the store on a miss.
type DeckCache struct {
	cache *cache.Cache
}

func NewDeckCache() *DeckCache {
	// Default expiration of 1 hour, purge sweep every 10 minutes. An entry is
	// re-set on every mutation, so only abandoned edit sessions expire.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &DeckCache{
		cache: c,
	}
}

func (r *DeckCache) Save(contentId uuid.UUID, deck *entity.SlideDeck) {
	r.cache.Set(contentId.String(), deck, cache.DefaultExpiration)
}

func (r *DeckCache) Get(contentId uuid.UUID) (*entity.SlideDeck, bool) {
	if x, found := r.cache.Get(contentId.String()); found {
		return x.(*entity.SlideDeck), true
	}
	return nil, false
}

func (r *DeckCache) Delete(contentId uuid.UUID) {
	r.cache.Delete(contentId.String())
}
