package geo

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"freelance-marketplace-backend/internal/domain"
	"freelance-marketplace-backend/internal/normalize"
)

// ResolvedCity is a successfully located city.
type ResolvedCity struct {
	Lat         float64
	Lng         float64
	CountryCode string
}

// Resolver owns the long-lived geocoding state: the external provider, the
// shared cache and the city-table write-back. Per-computation state (lookup
// maps, budget, negative results) lives in a Session.
type Resolver struct {
	provider Provider
	cache    *Cache
	cities   domain.CityRepository
	logger   *slog.Logger
	budget   int
}

func NewResolver(provider Provider, cache *Cache, cities domain.CityRepository, logger *slog.Logger, budgetPerCompute int) *Resolver {
	return &Resolver{
		provider: provider,
		cache:    cache,
		cities:   cities,
		logger:   logger,
		budget:   budgetPerCompute,
	}
}

// NewSession snapshots the city table for one ranking computation and arms a
// fresh external-call budget. Sessions must not be shared across
// computations.
func (r *Resolver) NewSession(cities []domain.CityRecord) *Session {
	s := &Session{
		r:      r,
		byID:   make(map[int64]*domain.CityRecord, len(cities)),
		byKey:  make(map[string]*domain.CityRecord, len(cities)),
		seen:   make(map[string]*ResolvedCity),
		budget: r.budget,
	}
	for i := range cities {
		c := &cities[i]
		s.byID[c.ID] = c
		s.byKey[normalize.CityKey(c.Name, c.CountryCode)] = c
	}
	return s
}

// Session resolves cities within one ranking computation. The mutex also
// serializes provider calls: budget accounting and negative caching must
// observe lookups one at a time to stay deterministic under concurrent
// candidate scoring.
type Session struct {
	r     *Resolver
	byID  map[int64]*domain.CityRecord
	byKey map[string]*domain.CityRecord

	mu     sync.Mutex
	seen   map[string]*ResolvedCity // request-scoped, nil entry = known unresolved
	budget int
}

// ResolveCityID locates a city-table row by id, geocoding it first if the
// table has no coordinates yet.
func (s *Session) ResolveCityID(ctx context.Context, id int64) *ResolvedCity {
	s.mu.Lock()
	defer s.mu.Unlock()
	city, ok := s.byID[id]
	if !ok {
		return nil
	}
	return s.ensureCityCoordsLocked(ctx, city)
}

// ResolveCity locates a city by name + country code: local table first, then
// the caches, then the external provider while budget remains.
func (s *Session) ResolveCity(ctx context.Context, name, countryCode string) *ResolvedCity {
	norm := normalize.Fold(name)
	if norm == "" {
		return nil
	}
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	key := norm + "|" + cc

	s.mu.Lock()
	defer s.mu.Unlock()

	if city, ok := s.byKey[key]; ok {
		return s.ensureCityCoordsLocked(ctx, city)
	}

	if res, ok := s.seen[key]; ok {
		return res
	}
	if coords, ok := s.r.cache.Get(ctx, key); ok {
		res := &ResolvedCity{Lat: coords.Lat, Lng: coords.Lng, CountryCode: cc}
		s.seen[key] = res
		return res
	}

	// The budget meters external provider calls only; cache hits are free.
	if s.budget <= 0 {
		return nil
	}
	s.budget--

	coords, err := s.r.provider.Geocode(ctx, norm, cc)
	if err != nil {
		s.r.logger.Warn("geocoding failed", "city", norm, "country", cc, "error", err)
		coords = nil
	}
	var res *ResolvedCity
	if coords != nil {
		res = &ResolvedCity{Lat: coords.Lat, Lng: coords.Lng, CountryCode: cc}
		s.r.cache.Put(ctx, key, *coords)
	}
	// Negative outcomes are cached too so repeated lookups of the same
	// unresolved city do not re-spend budget.
	s.seen[key] = res
	return res
}

// ensureCityCoordsLocked returns coordinates for a known city-table entry,
// geocoding and writing back on first need. Table entries do not consume the
// session budget. On provider failure the entry is left untouched and the
// failure is remembered for the rest of the computation.
func (s *Session) ensureCityCoordsLocked(ctx context.Context, city *domain.CityRecord) *ResolvedCity {
	cc := strings.ToUpper(strings.TrimSpace(city.CountryCode))
	if city.HasCoords() {
		return &ResolvedCity{Lat: *city.Lat, Lng: *city.Lng, CountryCode: cc}
	}

	key := normalize.CityKey(city.Name, city.CountryCode)
	if res, ok := s.seen[key]; ok {
		return res
	}

	coords, ok := s.r.cache.Get(ctx, key)
	if !ok {
		hit, err := s.r.provider.Geocode(ctx, normalize.Fold(city.Name), cc)
		if err != nil || hit == nil {
			if err != nil {
				s.r.logger.Warn("geocoding failed", "city", city.Name, "country", cc, "error", err)
			}
			s.seen[key] = nil
			return nil
		}
		coords = *hit
		s.r.cache.Put(ctx, key, coords)
	}

	// Opportunistic write-back; a failed UPDATE degrades to the in-memory
	// copy for this process.
	if err := s.r.cities.UpdateCoords(ctx, city.ID, coords.Lat, coords.Lng); err != nil {
		s.r.logger.Warn("city coords write-back failed", "city_id", city.ID, "error", err)
	}
	city.Lat = &coords.Lat
	city.Lng = &coords.Lng

	res := &ResolvedCity{Lat: coords.Lat, Lng: coords.Lng, CountryCode: cc}
	s.seen[key] = res
	return res
}
