package board

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skyops/tafboard/internal/notam"
	"github.com/skyops/tafboard/internal/observability"
	"github.com/skyops/tafboard/internal/routes"
	"github.com/skyops/tafboard/internal/taf"
	"github.com/skyops/tafboard/internal/upstream"
	"github.com/skyops/tafboard/pkg/logger"
)

// TAFFetcher is the batch TAF retrieval contract.
type TAFFetcher interface {
	FetchTAF(ctx context.Context, codes []string) map[string]taf.FetchResult
}

// NOTAMFetcher is the batch NOTAM retrieval contract.
type NOTAMFetcher interface {
	FetchNOTAMs(ctx context.Context, codes []string) map[string]notam.Result
}

// Publisher pushes board events to connected dashboard clients.
type Publisher interface {
	Publish(messageType string, data any)
}

// Message types published on snapshot lifecycle events.
const (
	EventBoardUpdate    = "board_update"
	EventRefreshStarted = "refresh_started"
)

// Service owns the refresh cycle: fetch, classify, snapshot, publish.
// Each cycle produces a fresh, independent snapshot; there is no shared
// mutable state between cycles and no internal retry loop beyond the
// per-request backoff inside the clients.
type Service struct {
	tafClient   TAFFetcher
	notamClient NOTAMFetcher // nil when NOTAM fetching is disabled
	tables      *routes.Tables
	cache       *Cache
	publisher   Publisher
	metrics     *observability.Metrics
	clock       clockwork.Clock
	interval    time.Duration
	logger      *logger.Logger

	// Service lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	// Initial data readiness
	initialDataReady chan struct{}
	initialDataOnce  sync.Once
}

// NewService creates a new board service.
func NewService(
	tafClient TAFFetcher,
	notamClient NOTAMFetcher,
	tables *routes.Tables,
	publisher Publisher,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	refreshInterval, cacheExpiry time.Duration,
	log *logger.Logger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		tafClient:        tafClient,
		notamClient:      notamClient,
		tables:           tables,
		cache:            NewCache(cacheExpiry, log),
		publisher:        publisher,
		metrics:          metrics,
		clock:            clock,
		interval:         refreshInterval,
		logger:           log.Named("board-service"),
		ctx:              ctx,
		cancel:           cancel,
		initialDataReady: make(chan struct{}),
	}
}

// Start begins the background refresh operations.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info("Starting board service",
		logger.Duration("refresh_interval", s.interval),
		logger.Bool("notams_enabled", s.notamClient != nil))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.backgroundRefresh()
	}()

	s.started = true
	return nil
}

// Stop gracefully shuts down the board service.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info("Stopping board service")
	s.cancel()
	s.wg.Wait()
	s.started = false
	return nil
}

// backgroundRefresh runs the periodic refresh at the configured
// interval. A failed cycle is not retried until the next tick or a
// manual trigger.
func (s *Service) backgroundRefresh() {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Background refresh stopped")
			return
		case <-ticker.Chan():
			s.logger.Debug("Periodic refresh triggered")
			s.refresh()
		}
	}
}

// RefreshNow triggers an immediate refresh (manual dashboard button).
func (s *Service) RefreshNow() {
	s.logger.Info("Manual refresh triggered")
	if s.publisher != nil {
		s.publisher.Publish(EventRefreshStarted, map[string]any{"trigger": "manual"})
	}
	go s.refresh()
}

// Snapshot returns the current cached snapshot, or nil before the
// first refresh completes.
func (s *Service) Snapshot() *Snapshot {
	return s.cache.Get()
}

// IsStale reports whether the current snapshot has outlived its expiry.
func (s *Service) IsStale() bool {
	return s.cache.IsStale()
}

// Regions returns the configured region names.
func (s *Service) Regions() []string {
	return s.tables.Regions()
}

// HasRegion reports whether a region is configured.
func (s *Service) HasRegion(region string) bool {
	return s.tables.HasRegion(region)
}

// WaitReady blocks until the initial refresh has produced a snapshot,
// or the context is done.
func (s *Service) WaitReady(ctx context.Context) error {
	select {
	case <-s.initialDataReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh runs one complete fetch-classify-snapshot cycle. Nothing in
// the cycle is allowed to terminate it: the worst outcome is error or
// no-data markers for the affected scope.
func (s *Service) refresh() {
	start := time.Now()

	destSet := s.tables.DestinationSet()
	eraSet := s.tables.EnrouteSet()

	// The destination and ERA batches are independent, so they are
	// issued concurrently. Each batch is a single request.
	var destResults, eraResults map[string]taf.FetchResult
	var fetchWG sync.WaitGroup
	fetchWG.Add(2)
	go func() {
		defer fetchWG.Done()
		destResults = s.tafClient.FetchTAF(s.ctx, destSet)
	}()
	go func() {
		defer fetchWG.Done()
		eraResults = s.tafClient.FetchTAF(s.ctx, eraSet)
	}()
	fetchWG.Wait()

	var notamResults map[string]notam.Result
	if s.notamClient != nil {
		notamResults = s.notamClient.FetchNOTAMs(s.ctx, s.tables.DestinationsForRegion(routes.RegionAll))
	}

	snapshot := s.assemble(destResults, eraResults, notamResults)
	s.cache.Set(snapshot)

	if s.metrics != nil {
		s.metrics.RefreshCycles.Inc()
		s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
		s.metrics.SnapshotAirports.Set(float64(len(destSet) + len(eraSet)))
	}

	if s.publisher != nil {
		s.publisher.Publish(EventBoardUpdate, snapshot)
	}

	s.initialDataOnce.Do(func() {
		close(s.initialDataReady)
		s.logger.Info("Initial board snapshot ready")
	})

	s.logger.Info("Board refresh completed",
		logger.Duration("duration", time.Since(start)),
		logger.Int("destination_airports", len(destSet)),
		logger.Int("enroute_airports", len(eraSet)))
}

// assemble builds the immutable snapshot from the batch results.
func (s *Service) assemble(destResults, eraResults map[string]taf.FetchResult, notamResults map[string]notam.Result) *Snapshot {
	snapshot := &Snapshot{GeneratedAt: time.Now().UTC()}

	for _, region := range s.tables.Regions() {
		for _, dest := range s.tables.DestinationsForRegion(region) {
			row := DestinationRow{
				Airport:     dest,
				Region:      region,
				Destination: s.buildWeather(dest, destResults),
			}
			for _, alt := range s.tables.AlternatesFor(dest) {
				row.Alternates = append(row.Alternates, s.buildWeather(alt, destResults))
			}
			if notamResults != nil {
				if result, ok := notamResults[dest]; ok {
					switch result.Status {
					case upstream.StatusOK:
						row.Notams = result.Notams
					case upstream.StatusError:
						row.NotamError = result.Err.Error()
					}
					if s.metrics != nil {
						s.metrics.NOTAMFetches.WithLabelValues(string(result.Status)).Inc()
					}
				}
			}
			snapshot.Destinations = append(snapshot.Destinations, row)
		}
	}

	for _, region := range s.tables.EnrouteRegions() {
		row := EnrouteRow{Region: region}
		for _, code := range s.tables.EnrouteForRegion(region) {
			row.Airports = append(row.Airports, s.buildWeather(code, eraResults))
		}
		snapshot.Enroute = append(snapshot.Enroute, row)
	}

	return snapshot
}

// buildWeather converts one fetch result into its display unit,
// classifying successful records.
func (s *Service) buildWeather(code string, results map[string]taf.FetchResult) AirportWeather {
	result, ok := results[code]
	if !ok {
		result = FetchResultNoData()
	}

	if s.metrics != nil {
		s.metrics.TAFFetches.WithLabelValues(string(result.Status)).Inc()
	}

	weather := AirportWeather{Airport: code, Status: result.Status}
	switch result.Status {
	case upstream.StatusOK:
		annotated := taf.Classify(result.Record.Text)
		weather.TAF = &annotated
		if s.metrics != nil {
			for category := range annotated.Categories {
				s.metrics.FlaggedCategories.WithLabelValues(string(category)).Inc()
			}
		}
	case upstream.StatusError:
		weather.Error = result.Err.Error()
	}
	return weather
}

// FetchResultNoData is the explicit marker for an airport absent from
// a successful batch response.
func FetchResultNoData() taf.FetchResult {
	return taf.FetchResult{Status: upstream.StatusNoData}
}
