// Package actions is the request-facing facade. It validates parameters,
// composes the ledger, market and news clients with the risk model, and
// returns JSON results.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/idhash"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/risk"
	"solana-risk-engine/internal/storage"
)

// Action names.
const (
	ActionPriceSentiment  = "price_sentiment"
	ActionAddressActivity = "address_activity"
	ActionRiskAnalysis    = "risk_analysis"
	ActionNews            = "news"
)

// DefaultActionTimeout bounds one Invoke call.
const DefaultActionTimeout = 30 * time.Second

// LedgerSource is the subset of the ledger client the actions use.
type LedgerSource interface {
	GetBalance(ctx context.Context, addr string) domain.Result[decimal.Decimal]
	GetRecentTransactions(ctx context.Context, addr string, limit int) domain.Result[[]domain.LedgerTransaction]
	GetOnChainTokenMeta(ctx context.Context, mint string) (*domain.OnChainTokenMeta, error)
	GetTokenHolders(ctx context.Context, mint string) ([]domain.TokenHolder, error)
	Slot(ctx context.Context) (int64, error)
}

// MarketSource provides price snapshots.
type MarketSource interface {
	GetPriceSnapshot(ctx context.Context, term string) (*domain.PriceSnapshot, error)
}

// NewsSource provides the aggregated news digest.
type NewsSource interface {
	GetAggregatedNews(ctx context.Context) (*domain.NewsDigest, error)
}

// AgedCache is a cache that can report how old its content is.
type AgedCache interface {
	Name() string
	Age() (time.Duration, bool)
}

// Options configures Engine.
type Options struct {
	Ledger LedgerSource
	Market MarketSource
	News   NewsSource
	// Caches are reported by Status. The clients own reads and writes.
	Caches []AgedCache
	Risk   risk.Config
	// Store records every invocation. Nil disables auditing.
	Store            storage.InvocationStore
	ActionTimeout    time.Duration
	TransactionLimit int
	Logger           *zerolog.Logger
	Now              func() time.Time
}

// Engine dispatches actions. It is long-lived and safe for concurrent use.
type Engine struct {
	ledger    LedgerSource
	market    MarketSource
	news      NewsSource
	caches    []AgedCache
	riskCfg   risk.Config
	store     storage.InvocationStore
	timeout   time.Duration
	txLimit   int
	log       zerolog.Logger
	now       func() time.Time
	startedAt time.Time

	handlers map[string]handler
}

type handler struct {
	prefix string
	run    func(ctx context.Context, raw json.RawMessage) (any, error)
}

// NewEngine creates an action engine.
func NewEngine(opts Options) *Engine {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "actions").Logger()

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	riskCfg := opts.Risk
	if riskCfg.Version == "" {
		riskCfg = risk.DefaultConfig()
	}

	e := &Engine{
		ledger:    opts.Ledger,
		market:    opts.Market,
		news:      opts.News,
		caches:    opts.Caches,
		riskCfg:   riskCfg,
		store:     opts.Store,
		timeout:   timeout,
		txLimit:   opts.TransactionLimit,
		log:       log,
		now:       now,
		startedAt: now(),
	}

	e.handlers = map[string]handler{
		ActionPriceSentiment:  {prefix: "price sentiment analysis failed", run: decodeAndRun(e.priceSentiment)},
		ActionAddressActivity: {prefix: "address activity analysis failed", run: decodeAndRun(e.addressActivity)},
		ActionRiskAnalysis:    {prefix: "token risk analysis failed", run: decodeAndRun(e.riskAnalysis)},
		ActionNews:            {prefix: "news retrieval failed", run: decodeAndRun(e.newsDigest)},
	}
	return e
}

func decodeAndRun[P any, R any](fn func(ctx context.Context, p P) (R, error)) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

// Actions lists the supported action names in sorted order.
func (e *Engine) Actions() []string {
	names := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke decodes params strictly, runs the action under the action deadline
// and returns its JSON result. Every failure is an *ActionError.
func (e *Engine) Invoke(ctx context.Context, action string, params json.RawMessage) (string, error) {
	start := e.now()

	out, err := e.invoke(ctx, action, params)

	duration := e.now().Sub(start)
	status := domain.InvocationOK
	if err != nil {
		status = domain.InvocationError
	}
	label := action
	if _, known := e.handlers[action]; !known {
		label = "unknown"
	}
	observability.RecordAction(label, string(status), duration.Seconds())
	if err == nil {
		observability.UpdateLastSuccessfulAction(e.now().Unix())
	}

	logEvent := e.log.Info()
	if err != nil {
		logEvent = e.log.Warn().Err(err).Str("kind", domain.Kind(err))
	}
	logEvent.Str("action", action).Dur("duration", duration).Msg("action invoked")

	e.audit(ctx, action, params, status, err, start, duration)
	return out, err
}

func (e *Engine) invoke(ctx context.Context, action string, params json.RawMessage) (string, error) {
	h, ok := e.handlers[action]
	if !ok {
		return "", &ActionError{
			Action: action,
			Prefix: "unknown action",
			Err:    fmt.Errorf("%w: %q is not one of %v", domain.ErrInvalidInput, action, e.Actions()),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := h.run(ctx, params)
	if err != nil {
		return "", &ActionError{Action: action, Prefix: h.prefix, Err: err}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", &ActionError{Action: action, Prefix: h.prefix, Err: fmt.Errorf("encode result: %w", err)}
	}
	return string(out), nil
}

// audit stores the invocation record. Failures are logged, never returned.
func (e *Engine) audit(ctx context.Context, action string, params json.RawMessage, status domain.InvocationStatus, err error, start time.Time, d time.Duration) {
	if e.store == nil {
		return
	}

	var stored []byte
	if len(params) > 0 && json.Valid(params) {
		stored = params
	}

	inv := &domain.Invocation{
		ID:         uuid.NewString(),
		Action:     action,
		Params:     stored,
		ParamsHash: idhash.ComputeParamsHash(action, params),
		Status:     status,
		ErrorKind:  domain.Kind(err),
		DurationMs: d.Milliseconds(),
		Timestamp:  start.UnixMilli(),
	}

	// The caller's context may already be done; the record is still wanted.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := e.store.Insert(storeCtx, inv); serr != nil {
		e.log.Warn().Err(serr).Str("action", action).Msg("failed to record invocation")
	}
}

// StatusReport is the engine health summary served by /status.
type StatusReport struct {
	Uptime      string             `json:"uptime"`
	Slot        int64              `json:"slot,omitempty"`
	SlotError   string             `json:"slotError,omitempty"`
	CacheAges   map[string]float64 `json:"cacheAgeSeconds"`
	Invocations map[string]int64   `json:"invocations,omitempty"`
}

// Status probes the ledger and reports cache ages and invocation counts.
func (e *Engine) Status(ctx context.Context) StatusReport {
	report := StatusReport{
		Uptime:    e.now().Sub(e.startedAt).Round(time.Second).String(),
		CacheAges: make(map[string]float64, len(e.caches)),
	}

	if e.ledger != nil {
		slot, err := e.ledger.Slot(ctx)
		if err != nil {
			report.SlotError = err.Error()
		} else {
			report.Slot = slot
		}
	}

	for _, c := range e.caches {
		if age, ok := c.Age(); ok {
			report.CacheAges[c.Name()] = age.Seconds()
		}
	}

	if e.store != nil {
		counts, err := e.store.CountByAction(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("failed to count invocations")
		} else {
			report.Invocations = counts
		}
	}
	return report
}

// ActionError is returned by Invoke. Its message is the action prefix followed
// by the original error text; errors.Is and errors.As reach the original.
type ActionError struct {
	Action string
	Prefix string
	Err    error
}

func (e *ActionError) Error() string {
	return e.Prefix + ": " + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
