// Package syncer implements the analytics synchronization engine: the
// freshness policy and the orchestrator that runs the four per-dataset
// fetch-or-serve-cache operations concurrently for one creator.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/creatordesk/channelsync/internal/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const persistTimeout = 30 * time.Second

// Locker is the cross-instance per-creator sync lease. A nil Locker disables
// leasing (single-instance deployments and tests); the in-process
// singleflight still collapses concurrent syncs for the same creator.
type Locker interface {
	TryAcquire(ctx context.Context, creatorID uuid.UUID) (release func(), acquired bool, err error)
}

// Orchestrator coordinates one full analytics sync per creator: credentials
// load, four concurrent dataset sub-syncs, and envelope assembly.
type Orchestrator struct {
	credentials  domain.CredentialStore
	profiles     domain.ProfileStore
	metricsStore domain.MetricsStore
	demographics domain.DemographicsStore
	performance  domain.PerformanceStore
	provider     domain.AnalyticsProvider
	policy       Policy
	lock         Locker
	clock        clockwork.Clock
	fetchTimeout time.Duration

	syncGroup singleflight.Group
}

func NewOrchestrator(
	credentials domain.CredentialStore,
	profiles domain.ProfileStore,
	metricsStore domain.MetricsStore,
	demographics domain.DemographicsStore,
	performance domain.PerformanceStore,
	provider domain.AnalyticsProvider,
	policy Policy,
	lock Locker,
	clock clockwork.Clock,
	fetchTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		credentials:  credentials,
		profiles:     profiles,
		metricsStore: metricsStore,
		demographics: demographics,
		performance:  performance,
		provider:     provider,
		policy:       policy,
		lock:         lock,
		clock:        clock,
		fetchTimeout: fetchTimeout,
	}
}

// Sync runs the full fetch-or-serve-cache cycle for one creator. Concurrent
// calls for the same creator collapse into one execution; different creators
// run fully independently. The only fatal error is a missing or unreadable
// credential pair: every per-dataset failure is reported inside the envelope.
//
// The collapsed execution runs on its own bounded context, not the initiating
// caller's: a caller that hangs up stops waiting, but joined callers still get
// the full result and completed write-throughs still land in the cache.
func (o *Orchestrator) Sync(ctx context.Context, creatorID uuid.UUID) (*domain.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := o.syncGroup.DoChan(creatorID.String(), func() (any, error) {
		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.fetchTimeout+persistTimeout)
		defer cancel()
		return o.syncOnce(syncCtx, creatorID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.SyncResult), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) syncOnce(ctx context.Context, creatorID uuid.UUID) (*domain.SyncResult, error) {
	timer := prometheus.NewTimer(metrics.SyncDuration)
	defer timer.ObserveDuration()

	creds, err := o.credentials.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsNotFound) {
			metrics.SyncsTotal.WithLabelValues("no_credentials").Inc()
			return nil, err
		}
		metrics.SyncsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	// The Redis lease keeps two instances from interleaving multi-row writes
	// for the same creator. Losing the lease race is not an error: the other
	// sync is doing the work, so this request is served from cache.
	fetchAllowed := true
	if o.lock != nil {
		release, acquired, lockErr := o.lock.TryAcquire(ctx, creatorID)
		switch {
		case lockErr != nil:
			// Lease storage being down must not take analytics down with it;
			// the in-process singleflight still serializes within this instance.
			slog.Warn("Sync lock unavailable, proceeding without lease",
				"creator_id", creatorID.String(), "error", lockErr)
		case acquired:
			defer release()
		default:
			fetchAllowed = false
		}
	}

	windowEnd := o.clock.Now()
	result := &domain.SyncResult{Success: true}

	done := make(chan struct{}, 4)
	go func() {
		result.Profile = runDataset(ctx, o, o.profilePlan(creatorID), *creds, fetchAllowed)
		done <- struct{}{}
	}()
	go func() {
		result.Metrics = runDataset(ctx, o, o.metricsPlan(creatorID), *creds, fetchAllowed)
		done <- struct{}{}
	}()
	go func() {
		result.Demographics = runDataset(ctx, o, o.demographicsPlan(creatorID), *creds, fetchAllowed)
		done <- struct{}{}
	}()
	go func() {
		result.Performance = runDataset(ctx, o, o.performancePlan(creatorID, windowEnd), *creds, fetchAllowed)
		done <- struct{}{}
	}()
	for range 4 {
		<-done
	}

	metrics.SyncsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// datasetPlan is the per-dataset parameterization of the one shared
// fetch-or-serve-cache operation. read reports (value, present, error);
// absence is not an error.
type datasetPlan[T any] struct {
	kind    domain.Dataset
	read    func(ctx context.Context) (T, bool, error)
	fresh   func(T) bool
	fetch   func(ctx context.Context, creds domain.CredentialPair) (T, error)
	persist func(ctx context.Context, value T) error
}

// runDataset executes one dataset sub-sync. It never panics the sibling
// datasets and never returns an error: every outcome is folded into the
// tagged result.
func runDataset[T any](ctx context.Context, o *Orchestrator, plan datasetPlan[T], creds domain.CredentialPair, fetchAllowed bool) domain.DatasetResult[T] {
	cached, present, err := plan.read(ctx)
	if err != nil {
		// A storage read failure is surfaced, not masked by provider traffic.
		slog.Error("Snapshot read failed", "dataset", plan.kind, "error", err)
		return domain.Failed[T](fmt.Errorf("failed to read %s snapshot: %w", plan.kind, err))
	}

	if present && plan.fresh(cached) {
		metrics.CacheResultsTotal.WithLabelValues(string(plan.kind), "hit").Inc()
		return domain.OK(cached, domain.SourceCache)
	}

	if !fetchAllowed {
		if present {
			metrics.CacheResultsTotal.WithLabelValues(string(plan.kind), "hit").Inc()
			return domain.OK(cached, domain.SourceCache)
		}
		return domain.Failed[T](domain.ErrSyncInProgress)
	}

	metrics.CacheResultsTotal.WithLabelValues(string(plan.kind), "miss").Inc()

	var live T
	fetchErr := ctx.Err() // do not start a provider call after cancellation
	if fetchErr == nil {
		fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
		live, fetchErr = plan.fetch(fetchCtx, creds)
		cancel()
	}
	if fetchErr != nil {
		metrics.ProviderCallsTotal.WithLabelValues(string(plan.kind), providerCallStatus(fetchErr)).Inc()
		if present {
			// Stale beats unavailable: serve the old snapshot and flag it.
			slog.Warn("Fetch failed, serving stale snapshot",
				"dataset", plan.kind, "error", fetchErr)
			metrics.CacheResultsTotal.WithLabelValues(string(plan.kind), "degraded").Inc()
			res := domain.OK(cached, domain.SourceCache)
			res.Degraded = true
			return res
		}
		return domain.Failed[T](fetchErr)
	}
	metrics.ProviderCallsTotal.WithLabelValues(string(plan.kind), "success").Inc()

	// A write that has started is allowed to finish even if the caller has
	// gone away, so rows are never cancelled mid-flight.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := plan.persist(persistCtx, live); err != nil {
		// The fetched value is authoritative for this response; it is just
		// not cached for next time.
		slog.Warn("Write-through failed, serving live value uncached",
			"dataset", plan.kind, "error", err)
		metrics.CacheWriteFailures.WithLabelValues(string(plan.kind)).Inc()
		res := domain.OK(live, domain.SourceLive)
		res.CacheWriteFailed = true
		return res
	}

	return domain.OK(live, domain.SourceLive)
}

func providerCallStatus(err error) string {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.RateLimited {
		return "rate_limited"
	}
	return "error"
}

func (o *Orchestrator) profilePlan(creatorID uuid.UUID) datasetPlan[*domain.ProfileSnapshot] {
	return datasetPlan[*domain.ProfileSnapshot]{
		kind: domain.DatasetProfile,
		read: func(ctx context.Context) (*domain.ProfileSnapshot, bool, error) {
			snap, err := o.profiles.Get(ctx, creatorID)
			if errors.Is(err, domain.ErrSnapshotNotFound) {
				return nil, false, nil
			}
			return snap, err == nil, err
		},
		fresh: func(snap *domain.ProfileSnapshot) bool {
			return o.policy.IsFresh(domain.DatasetProfile, snap.LastUpdated)
		},
		fetch: o.provider.FetchProfile,
		persist: func(ctx context.Context, snap *domain.ProfileSnapshot) error {
			return o.profiles.Upsert(ctx, creatorID, *snap)
		},
	}
}

func (o *Orchestrator) metricsPlan(creatorID uuid.UUID) datasetPlan[*domain.MetricsSnapshot] {
	return datasetPlan[*domain.MetricsSnapshot]{
		kind: domain.DatasetMetrics,
		read: func(ctx context.Context) (*domain.MetricsSnapshot, bool, error) {
			snap, err := o.metricsStore.Get(ctx, creatorID)
			if errors.Is(err, domain.ErrSnapshotNotFound) {
				return nil, false, nil
			}
			return snap, err == nil, err
		},
		fresh: func(snap *domain.MetricsSnapshot) bool {
			return o.policy.IsFresh(domain.DatasetMetrics, snap.LastUpdated)
		},
		fetch: o.provider.FetchMetrics,
		persist: func(ctx context.Context, snap *domain.MetricsSnapshot) error {
			return o.metricsStore.Upsert(ctx, creatorID, *snap)
		},
	}
}

func (o *Orchestrator) demographicsPlan(creatorID uuid.UUID) datasetPlan[*domain.DemographicsSnapshot] {
	return datasetPlan[*domain.DemographicsSnapshot]{
		kind: domain.DatasetDemographics,
		read: func(ctx context.Context) (*domain.DemographicsSnapshot, bool, error) {
			snap, err := o.demographics.Get(ctx, creatorID)
			if err != nil {
				return nil, false, err
			}
			return snap, !snap.Empty(), nil
		},
		fresh: o.policy.DemographicsFresh,
		fetch: func(ctx context.Context, creds domain.CredentialPair) (*domain.DemographicsSnapshot, error) {
			rows, err := o.provider.FetchDemographics(ctx, creds)
			if err != nil {
				return nil, err
			}
			return domain.GroupDemographics(rows), nil
		},
		persist: func(ctx context.Context, snap *domain.DemographicsSnapshot) error {
			return o.demographics.Upsert(ctx, creatorID, snap.Rows())
		},
	}
}

func (o *Orchestrator) performancePlan(creatorID uuid.UUID, windowEnd time.Time) datasetPlan[domain.PerformanceSeries] {
	return datasetPlan[domain.PerformanceSeries]{
		kind: domain.DatasetPerformance,
		read: func(ctx context.Context) (domain.PerformanceSeries, bool, error) {
			series, err := o.performance.GetRange(ctx, creatorID, domain.AnalysisWindowStart, windowEnd)
			if err != nil {
				return nil, false, err
			}
			return series, len(series) > 0, nil
		},
		fresh: func(series domain.PerformanceSeries) bool {
			return o.policy.IsFresh(domain.DatasetPerformance, series.LastUpdated())
		},
		fetch: func(ctx context.Context, creds domain.CredentialPair) (domain.PerformanceSeries, error) {
			points, err := o.provider.FetchPerformance(ctx, creds, domain.AnalysisWindowStart, windowEnd)
			if err != nil {
				return nil, err
			}
			return domain.PerformanceSeries(points), nil
		},
		persist: func(ctx context.Context, series domain.PerformanceSeries) error {
			return o.performance.Upsert(ctx, creatorID, series)
		},
	}
}
