package scenario

import (
	"sort"
	"sync/atomic"

	"dojo/internal/config"
)

// Resolver maps scenario identifiers to container images.
type Resolver interface {
	// Resolve is total: identifiers without a mapping resolve to the default image.
	Resolve(scenarioID string) string
	// IsPrivileged reports whether the scenario needs the engine control socket.
	IsPrivileged(scenarioID string) bool
	// Lookup returns the image and privileged flag from one snapshot.
	Lookup(scenarioID string) (image string, privileged bool)
}

// Catalog is an immutable scenario to image table.
type Catalog struct {
	defaultImage string
	images       map[string]string
	privileged   map[string]struct{}
}

// Entry is one row of a catalog listing.
type Entry struct {
	ScenarioID string
	Image      string
	Privileged bool
}

// NewCatalog copies its inputs so later mutation of the caller's map has no effect.
func NewCatalog(defaultImage string, images map[string]string, privileged []string) *Catalog {
	c := &Catalog{
		defaultImage: defaultImage,
		images:       make(map[string]string, len(images)),
		privileged:   make(map[string]struct{}, len(privileged)),
	}
	for id, image := range images {
		c.images[id] = image
	}
	for _, id := range privileged {
		c.privileged[id] = struct{}{}
	}
	return c
}

// FromConfig builds a Catalog from the scenarios section.
func FromConfig(cfg config.ScenarioConfig) *Catalog {
	return NewCatalog(cfg.DefaultImage, cfg.Images, cfg.Privileged)
}

func (c *Catalog) Resolve(scenarioID string) string {
	if image, ok := c.images[scenarioID]; ok {
		return image
	}
	return c.defaultImage
}

func (c *Catalog) IsPrivileged(scenarioID string) bool {
	_, ok := c.privileged[scenarioID]
	return ok
}

func (c *Catalog) Lookup(scenarioID string) (string, bool) {
	return c.Resolve(scenarioID), c.IsPrivileged(scenarioID)
}

// DefaultImage returns the fallback image.
func (c *Catalog) DefaultImage() string {
	return c.defaultImage
}

// Entries lists mapped and privileged scenarios sorted by identifier.
// Privileged scenarios without an explicit image are listed with the default image.
func (c *Catalog) Entries() []Entry {
	seen := make(map[string]struct{}, len(c.images)+len(c.privileged))
	var entries []Entry
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		entries = append(entries, Entry{ScenarioID: id, Image: c.Resolve(id), Privileged: c.IsPrivileged(id)})
	}
	for id := range c.images {
		add(id)
	}
	for id := range c.privileged {
		add(id)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ScenarioID < entries[j].ScenarioID })
	return entries
}

// Images returns every distinct image the catalog can resolve to, sorted.
func (c *Catalog) Images() []string {
	set := map[string]struct{}{c.defaultImage: {}}
	for _, image := range c.images {
		set[image] = struct{}{}
	}
	images := make([]string, 0, len(set))
	for image := range set {
		images = append(images, image)
	}
	sort.Strings(images)
	return images
}

// Store holds the current Catalog and swaps it atomically on reload.
// Sessions resolve against whichever snapshot is current when they call Lookup.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore returns a Store serving initial.
func NewStore(initial *Catalog) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Swap replaces the current catalog.
func (s *Store) Swap(c *Catalog) {
	s.current.Store(c)
}

// Current returns the active snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

func (s *Store) Resolve(scenarioID string) string {
	return s.Current().Resolve(scenarioID)
}

func (s *Store) IsPrivileged(scenarioID string) bool {
	return s.Current().IsPrivileged(scenarioID)
}

// Lookup answers both questions from the same snapshot, so a concurrent Swap
// cannot pair one catalog's image with another's privileged flag.
func (s *Store) Lookup(scenarioID string) (string, bool) {
	return s.Current().Lookup(scenarioID)
}
