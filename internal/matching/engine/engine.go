// internal/matching/engine/engine.go
//
// Engine orchestrates filter, score, aggregate, rank and fallback. It is
// immutable after construction and stateless per request: it reads the
// caller's order and candidate snapshot and returns values, never writing.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"forgelink/internal/common/config"
	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/common/logger"
	"forgelink/internal/common/metrics"
	"forgelink/internal/matching/fuzzy"
	"forgelink/internal/matching/scoring"
	"forgelink/internal/models"
)

const (
	DefaultMinViableScore = 0.10
	DefaultMaxResults     = 10
	DefaultConcurrency    = 8
)

// dimensionScorer produces one sub-score for one candidate.
type dimensionScorer interface {
	Score(order *models.Order, p *models.ManufacturerProfile) scoring.Result
}

// Engine holds validated weights and threshold configuration. Construct one
// per configuration and pass it to callers explicitly.
type Engine struct {
	weights    scoring.Weights
	aggregator *scoring.Aggregator

	capability  *scoring.CapabilityScorer
	geographic  *scoring.GeographicScorer
	fixed       map[models.Dimension]dimensionScorer
	performance *scoring.PerformanceScorer

	filter     *Filter
	strategist *Strategist
	risk       *scoring.RiskAssessor
	riskCfg    scoring.RiskConfig

	matcher       fuzzy.Matcher
	thresholdStep float64
	radiusFactor  float64
	clock         func() time.Time

	cache     *ResultCache
	predictor Predictor

	minViableScore     float64
	capacityCeilingPct float64
	maxResults         int
	concurrency        int
	fallbackEnabled    bool

	logger logger.Logger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithResultCache attaches an advisory result cache.
func WithResultCache(cache *ResultCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithPredictor attaches the success-prediction adjunct. It only affects the
// historical_success dimension and only when it answers within its timeout.
func WithPredictor(p Predictor) Option {
	return func(e *Engine) { e.predictor = p }
}

// WithClock fixes the time source for availability and risk assessment.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
		e.fixed[models.DimensionAvailability] = scoring.NewAvailabilityScorer(now)
		e.risk = scoring.NewRiskAssessor(e.riskCfg, now)
	}
}

// New builds an engine from configuration. Weights are validated here, once;
// invalid weights are fatal and no request can proceed until fixed.
func New(cfg config.MatchingConfig, log logger.Logger, opts ...Option) (*Engine, error) {
	weights := scoring.FromConfig(cfg.Weights)
	aggregator, err := scoring.NewAggregator(weights)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = fuzzy.DefaultThreshold
	}
	minViable := cfg.MinViableScore
	if minViable <= 0 {
		minViable = DefaultMinViableScore
	}
	ceiling := cfg.CapacityCeilingPct
	if ceiling <= 0 {
		ceiling = 95.0
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	matcher := fuzzy.NewTokenMatcher()
	riskCfg := scoring.DefaultRiskConfig()
	riskCfg.MaxRiskFactors = cfg.MaxRiskFactors
	if cfg.Fallback.InactiveDays > 0 {
		riskCfg.InactiveAfter = time.Duration(cfg.Fallback.InactiveDays) * 24 * time.Hour
	}

	e := &Engine{
		weights:     weights,
		aggregator:  aggregator,
		capability:  scoring.NewCapabilityScorer(matcher, threshold),
		geographic:  scoring.NewGeographicScorer(),
		performance: scoring.NewPerformanceScorer(scoring.DefaultExperienceSaturation, log),
		fixed: map[models.Dimension]dimensionScorer{
			models.DimensionQuality:           scoring.NewQualityScorer(),
			models.DimensionCost:              scoring.NewCostScorer(),
			models.DimensionAvailability:      scoring.NewAvailabilityScorer(nil),
			models.DimensionSpecialization:    scoring.NewSpecializationScorer(matcher, threshold),
			models.DimensionHistoricalSuccess: scoring.NewHistoricalSuccessScorer(),
		},
		filter: NewFilter(FilterConfig{
			RequireOnboarding:  true,
			CapacityCeilingPct: ceiling,
		}),
		strategist:         NewStrategist(threshold, cfg.Fallback.ThresholdStep, cfg.Fallback.RadiusFactor),
		risk:               scoring.NewRiskAssessor(riskCfg, nil),
		riskCfg:            riskCfg,
		matcher:            matcher,
		thresholdStep:      cfg.Fallback.ThresholdStep,
		radiusFactor:       cfg.Fallback.RadiusFactor,
		minViableScore:     minViable,
		capacityCeilingPct: ceiling,
		maxResults:         maxResults,
		concurrency:        concurrency,
		fallbackEnabled:    cfg.Fallback.Enabled,
		logger:             log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FindOptions are the per-call overrides for FindMatches. Zero values fall
// back to the engine configuration.
type FindOptions struct {
	// MaxResults caps the ranked list.
	MaxResults int
	// DisableFallback stops after DIRECT_MATCH even when the engine has
	// fallback enabled.
	DisableFallback bool
	// FuzzyThreshold overrides the capability similarity threshold; the
	// fallback plan relaxes from this base.
	FuzzyThreshold float64
	// MinViableScore overrides the viability cutoff for non-terminal stages.
	MinViableScore float64
	// CapacityCeilingPct overrides the pre-filter utilization ceiling.
	CapacityCeilingPct float64
	// MaxRiskFactors overrides the risk annotation cap.
	MaxRiskFactors int
}

// callSettings is the per-request view of the engine's tunable components,
// materialized from FindOptions overrides.
type callSettings struct {
	capability     *scoring.CapabilityScorer
	specialization dimensionScorer
	risk           *scoring.RiskAssessor
	filter         *Filter
	strategist     *Strategist
	minViable      float64
	ceiling        float64
}

func (e *Engine) defaultCall() callSettings {
	return callSettings{
		capability:     e.capability,
		specialization: e.fixed[models.DimensionSpecialization],
		risk:           e.risk,
		filter:         e.filter,
		strategist:     e.strategist,
		minViable:      e.minViableScore,
		ceiling:        e.capacityCeilingPct,
	}
}

func (e *Engine) callFor(opts FindOptions) callSettings {
	call := e.defaultCall()

	if opts.MinViableScore > 0 {
		call.minViable = opts.MinViableScore
	}
	if opts.FuzzyThreshold > 0 {
		call.capability = scoring.NewCapabilityScorer(e.matcher, opts.FuzzyThreshold)
		call.specialization = scoring.NewSpecializationScorer(e.matcher, opts.FuzzyThreshold)
		call.strategist = NewStrategist(opts.FuzzyThreshold, e.thresholdStep, e.radiusFactor)
	}
	if opts.CapacityCeilingPct > 0 {
		cfg := e.filter.cfg
		cfg.CapacityCeilingPct = opts.CapacityCeilingPct
		call.filter = NewFilter(cfg)
		call.ceiling = opts.CapacityCeilingPct
	}
	if opts.MaxRiskFactors > 0 {
		cfg := e.riskCfg
		cfg.MaxRiskFactors = opts.MaxRiskFactors
		call.risk = scoring.NewRiskAssessor(cfg, e.clock)
	}
	return call
}

// FindMatches ranks the candidate pool against the order. The result is
// deterministic for a fixed order, pool snapshot and weights: ties in total
// score break by performance sub-score, then completed orders, then
// manufacturer ID.
func (e *Engine) FindMatches(ctx context.Context, order *models.Order, candidates []*models.ManufacturerProfile, opts FindOptions) ([]models.MatchResult, error) {
	start := time.Now()
	metrics.MatchRequestsTotal.WithLabelValues("find_matches").Inc()
	defer func() {
		metrics.MatchRequestDuration.WithLabelValues("find_matches").Observe(time.Since(start).Seconds())
	}()

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = e.maxResults
	}
	fallback := e.fallbackEnabled && !opts.DisableFallback
	call := e.callFor(opts)

	profiles := make(map[string]*models.ManufacturerProfile, len(candidates))
	candidateIDs := make([]string, 0, len(candidates))
	for _, p := range candidates {
		profiles[p.ID] = p
		candidateIDs = append(candidateIDs, p.ID)
	}

	scope := CacheScope{
		CandidateIDs:       candidateIDs,
		Fallback:           fallback,
		FuzzyThreshold:     opts.FuzzyThreshold,
		MinViableScore:     opts.MinViableScore,
		CapacityCeilingPct: opts.CapacityCeilingPct,
		MaxRiskFactors:     opts.MaxRiskFactors,
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, order, e.weights, scope); ok {
			if len(cached) > maxResults {
				cached = cached[:maxResults]
			}
			return cached, nil
		}
	}

	viable := make(map[string]models.MatchResult)

	for _, stage := range call.strategist.Plan() {
		if stage.Stage != models.StageDirectMatch {
			if !fallback {
				break
			}
			metrics.FallbackEscalations.WithLabelValues(string(stage.Stage)).Inc()
			e.logger.Info("escalating fallback stage", map[string]interface{}{
				"orderId": order.ID,
				"stage":   string(stage.Stage),
				"viable":  len(viable),
			})
		}

		var pool []*models.ManufacturerProfile
		if stage.SkipFilter {
			pool = call.filter.BroadcastEligible(candidates)
		} else {
			var excluded []Exclusion
			pool, excluded = call.filter.Apply(order, candidates)
			if len(excluded) > 0 {
				e.logger.Debug("candidates excluded by pre-filter", map[string]interface{}{
					"orderId":    order.ID,
					"stage":      string(stage.Stage),
					"exclusions": excluded,
				})
			}
		}

		// Candidates already viable from an earlier, stricter stage keep
		// that stage's result and annotation.
		pending := pool[:0:0]
		for _, p := range pool {
			if _, ok := viable[p.ID]; !ok {
				pending = append(pending, p)
			}
		}

		scored, err := e.scorePool(ctx, order, pending, stage, call)
		if err != nil {
			return nil, err
		}
		for _, res := range scored {
			if stage.Terminal() || e.viableAt(order, res, call.minViable) {
				viable[res.ManufacturerID] = res
			}
		}

		if len(viable) >= maxResults {
			break
		}
	}

	ranked := e.rank(viable, profiles)
	if e.cache != nil {
		e.cache.Set(ctx, order, e.weights, scope, ranked)
	}
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked, nil
}

// viableAt reports whether a result clears the viability cutoff at a
// non-terminal stage. When the order declares capability requirements and the
// capability dimension is weighted, a candidate matching none of them is not
// viable before the terminal stage regardless of its other sub-scores.
func (e *Engine) viableAt(order *models.Order, res models.MatchResult, minViable float64) bool {
	if res.TotalScore < minViable {
		return false
	}
	if _, weighted := e.weights[models.DimensionCapability]; weighted &&
		hasCapabilityRequirements(order) && res.SubScores[models.DimensionCapability] == 0 {
		return false
	}
	return true
}

func hasCapabilityRequirements(order *models.Order) bool {
	return len(order.Processes) > 0 || len(order.Materials) > 0 ||
		len(order.Certifications) > 0 || len(order.SpecialRequirements) > 0 ||
		order.Industry != ""
}

// AnalyzeMatch scores a single pair with the direct-match constraints,
// skipping filtering and fallback. Used to explain why a manufacturer was or
// was not recommended.
func (e *Engine) AnalyzeMatch(ctx context.Context, order *models.Order, p *models.ManufacturerProfile) (*models.MatchResult, error) {
	metrics.MatchRequestsTotal.WithLabelValues("analyze_match").Inc()

	call := e.defaultCall()
	stage := call.strategist.Plan()[0]
	res, err := e.scoreCandidate(ctx, order, p, stage, call)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Broadcast scores an explicit candidate list without filtering or a ranking
// cutoff, keyed by manufacturer ID.
func (e *Engine) Broadcast(ctx context.Context, order *models.Order, candidates []*models.ManufacturerProfile) (map[string]models.MatchResult, error) {
	start := time.Now()
	metrics.MatchRequestsTotal.WithLabelValues("broadcast").Inc()
	defer func() {
		metrics.MatchRequestDuration.WithLabelValues("broadcast").Observe(time.Since(start).Seconds())
	}()

	call := e.defaultCall()
	plan := call.strategist.Plan()
	stage := plan[len(plan)-1]
	scored, err := e.scorePool(ctx, order, candidates, stage, call)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.MatchResult, len(scored))
	for _, res := range scored {
		out[res.ManufacturerID] = res
	}
	return out, nil
}

// Weights returns the engine's validated weight set.
func (e *Engine) Weights() scoring.Weights {
	return e.weights
}

// scorePool fans scoring out across candidates. Scoring one candidate has no
// data dependency on another, so the only coordination is collecting results.
// A failure or panic for one candidate excludes that candidate and never
// aborts the rest of the pool.
func (e *Engine) scorePool(ctx context.Context, order *models.Order, pool []*models.ManufacturerProfile, stage StagePlan, call callSettings) ([]models.MatchResult, error) {
	results := make([]*models.MatchResult, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range pool {
		g.Go(func() error {
			res, err := e.scoreCandidate(gctx, order, p, stage, call)
			if err != nil {
				metrics.ScoringErrors.Inc()
				e.logger.WithError(err).Error("scoring failed, excluding candidate", map[string]interface{}{
					"orderId": order.ID,
				})
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.MatchResult, 0, len(results))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

// scoreCandidate runs every weighted dimension scorer for one candidate and
// aggregates. Panics are contained here so one corrupt profile cannot take
// down the request.
func (e *Engine) scoreCandidate(ctx context.Context, order *models.Order, p *models.ManufacturerProfile, stage StagePlan, call callSettings) (res models.MatchResult, err error) {
	manufacturerID := ""
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewScoringFailedError(manufacturerID, fmt.Errorf("panic: %v", r))
		}
	}()
	manufacturerID = p.ID

	metrics.CandidatesScored.Inc()

	subScores := make(map[models.Dimension]float64, len(e.weights))
	var reasons, riskFactors []string
	var distanceKM *float64
	disqualified := false

	for _, dim := range e.weights.Dimensions() {
		r := e.scorerFor(dim, stage, call).Score(order, p)
		subScores[dim] = r.Score
		reasons = append(reasons, r.Reasons...)
		riskFactors = append(riskFactors, r.RiskFactors...)
		if r.DistanceKM != nil {
			distanceKM = r.DistanceKM
		}
		if r.Disqualified {
			disqualified = true
		}
	}

	if pred := e.predict(ctx, order, p); pred != nil {
		if _, ok := e.weights[models.DimensionHistoricalSuccess]; ok {
			subScores[models.DimensionHistoricalSuccess] = pred.SuccessProbability
		}
	}

	total := e.aggregator.Aggregate(subScores)
	if disqualified {
		// An infeasible candidate ranks at zero no matter how well the
		// other dimensions scored.
		total = 0
	}

	res = models.MatchResult{
		ManufacturerID: p.ID,
		TotalScore:     total,
		SubScores:      subScores,
		Reasons:        reasons,
		RiskFactors:    riskFactors,
		DistanceKM:     distanceKM,
		Availability:   scoring.StatusFor(p, call.ceiling),
		Stage:          stage.Stage,
	}
	call.risk.Annotate(&res, p)
	return res, nil
}

func (e *Engine) scorerFor(dim models.Dimension, stage StagePlan, call callSettings) dimensionScorer {
	switch dim {
	case models.DimensionCapability:
		if stage.CapabilityThreshold != call.capability.Threshold() {
			return call.capability.WithThreshold(stage.CapabilityThreshold)
		}
		return call.capability
	case models.DimensionGeographic:
		if stage.RadiusFactor != 1.0 {
			return e.geographic.WithRadiusFactor(stage.RadiusFactor)
		}
		return e.geographic
	case models.DimensionPerformance:
		return e.performance
	case models.DimensionSpecialization:
		return call.specialization
	default:
		return e.fixed[dim]
	}
}

// predict calls the adjunct predictor, if configured, with its bounded
// timeout. Any failure keeps the deterministic score.
func (e *Engine) predict(ctx context.Context, order *models.Order, p *models.ManufacturerProfile) *Prediction {
	if e.predictor == nil {
		return nil
	}
	if _, ok := e.weights[models.DimensionHistoricalSuccess]; !ok {
		return nil
	}

	pred, err := e.predictor.Predict(ctx, order, p)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodePredictionTimeout) {
			metrics.PredictorTimeouts.Inc()
		}
		e.logger.WithError(err).Warn("predictor unavailable, using deterministic score", map[string]interface{}{
			"manufacturerId": p.ID,
		})
		return nil
	}
	return pred
}

func (e *Engine) rank(viable map[string]models.MatchResult, profiles map[string]*models.ManufacturerProfile) []models.MatchResult {
	ranked := make([]models.MatchResult, 0, len(viable))
	for _, res := range viable {
		ranked = append(ranked, res)
	}

	completedOrders := func(id string) int {
		if p, ok := profiles[id]; ok {
			return p.Performance.CompletedOrders
		}
		return 0
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.SubScores[models.DimensionPerformance] != b.SubScores[models.DimensionPerformance] {
			return a.SubScores[models.DimensionPerformance] > b.SubScores[models.DimensionPerformance]
		}
		if ca, cb := completedOrders(a.ManufacturerID), completedOrders(b.ManufacturerID); ca != cb {
			return ca > cb
		}
		return a.ManufacturerID < b.ManufacturerID
	})
	return ranked
}
