// README: Fare engine: owns the single system fare config and prices trips against it.
package fare

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"autometer/internal/config"
	"autometer/internal/observability"
	"autometer/internal/types"
)

// DistanceResolver turns two free-form places into a driving distance in km.
type DistanceResolver interface {
	DrivingDistanceKm(ctx context.Context, origin, destination string) (float64, error)
}

type Deps struct {
	Store     Repository
	Cache     Cache
	Distances DistanceResolver
	Config    config.FareConfig
	Logger    *slog.Logger
}

type Service struct {
	store     Repository
	cache     Cache
	distances DistanceResolver
	cfg       config.FareConfig
	log       *slog.Logger

	// stale is set when a write could neither refresh nor drop the cached
	// config. Reads bypass the cache until a later write to it succeeds.
	stale atomic.Bool
}

func NewService(deps Deps) *Service {
	cfg := deps.Config
	if cfg.WaitingIntervalMin <= 0 {
		cfg.WaitingIntervalMin = DefaultIntervalMinutes
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     deps.Store,
		cache:     deps.Cache,
		distances: deps.Distances,
		cfg:       cfg,
		log:       log.With("module", "fare"),
	}
}

// GetConfig returns the active config, creating it with the built-in
// defaults when none exists yet.
func (s *Service) GetConfig(ctx context.Context) (Config, error) {
	if cfg, ok := s.cached(ctx); ok {
		return cfg, nil
	}

	cfg, err := s.store.GetActive(ctx)
	if errors.Is(err, types.ErrNotFound) {
		cfg, err = s.createDefault(ctx)
	}
	if err != nil {
		return Config{}, err
	}
	s.remember(ctx, cfg)
	return cfg, nil
}

func (s *Service) createDefault(ctx context.Context) (Config, error) {
	cfg, err := s.store.InsertDefault(ctx, defaultRates(), s.cfg.WaitingIntervalMin)
	if errors.Is(err, types.ErrConflict) {
		// Another first reader won the unique index; read theirs once.
		cfg, err = s.store.GetActive(ctx)
	}
	if err != nil {
		return Config{}, err
	}
	observability.FareConfigWrites.WithLabelValues("default").Inc()
	s.log.Info("system fare config initialised with defaults", "fare_id", cfg.ID)
	return cfg, nil
}

// SetConfig overwrites the active config in place, creating it if absent.
// created reports whether a new record was inserted.
func (s *Service) SetConfig(ctx context.Context, rates Rates) (cfg Config, created bool, err error) {
	rates.BaseFare = types.Round2(rates.BaseFare)
	rates.PerKmRate = types.Round2(rates.PerKmRate)
	rates.WaitingChargePerInterval = types.Round2(rates.WaitingChargePerInterval)
	if err := validateRates(rates, s.cfg.MaxPerKmRate); err != nil {
		return Config{}, false, err
	}

	cfg, created, err = s.store.Upsert(ctx, rates, s.cfg.WaitingIntervalMin)
	if err != nil {
		return Config{}, false, err
	}
	observability.FareConfigWrites.WithLabelValues("update").Inc()
	s.log.Info("system fare config saved", "fare_id", cfg.ID, "created", created,
		"base_fare", cfg.BaseFare, "per_km_rate", cfg.PerKmRate, "waiting_charge", cfg.WaitingChargePerInterval)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cfg); err != nil {
			s.log.Warn("fare cache write failed; invalidating", "error", err)
			if err := s.cache.Invalidate(ctx); err != nil {
				s.log.Error("fare cache invalidate failed; bypassing cache", "error", err)
				s.stale.Store(true)
			} else {
				s.stale.Store(false)
			}
		} else {
			s.stale.Store(false)
		}
	}
	return cfg, created, nil
}

// Quote prices a trip. When Distance is zero and both Origin and Destination
// are given, the distance is looked up through the configured resolver.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	distance, err := s.tripDistance(ctx, req)
	if err != nil {
		return Quote{}, err
	}
	if err := validateTrip(distance, req.WaitingMinutes); err != nil {
		return Quote{}, err
	}

	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return Quote{}, err
	}
	q, err := Calculate(cfg, distance, req.WaitingMinutes)
	if err != nil {
		return Quote{}, err
	}
	observability.FareQuotesTotal.Inc()
	return q, nil
}

func (s *Service) tripDistance(ctx context.Context, req QuoteRequest) (float64, error) {
	if req.Distance != 0 || req.Origin == "" || req.Destination == "" {
		return req.Distance, nil
	}
	if s.distances == nil {
		return 0, types.Invalid("distance is required")
	}
	km, err := s.distances.DrivingDistanceKm(ctx, req.Origin, req.Destination)
	if err != nil {
		s.log.Warn("distance lookup failed", "origin", req.Origin, "destination", req.Destination, "error", err)
		return 0, types.Invalid("could not determine distance between origin and destination")
	}
	return types.RoundTo(km, 3), nil
}

func (s *Service) cached(ctx context.Context) (Config, bool) {
	if s.cache == nil {
		return Config{}, false
	}
	if s.stale.Load() {
		observability.FareCacheResults.WithLabelValues("stale").Inc()
		return Config{}, false
	}
	cfg, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		observability.FareCacheResults.WithLabelValues("error").Inc()
		s.log.Warn("fare cache read failed", "error", err)
		return Config{}, false
	case !ok:
		observability.FareCacheResults.WithLabelValues("miss").Inc()
		return Config{}, false
	}
	observability.FareCacheResults.WithLabelValues("hit").Inc()
	return cfg, true
}

func (s *Service) remember(ctx context.Context, cfg Config) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cfg); err != nil {
		s.log.Warn("fare cache write failed", "error", err)
		return
	}
	s.stale.Store(false)
}
