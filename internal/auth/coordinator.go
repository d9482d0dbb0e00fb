package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/session"
	"github.com/wolfeidau/recipebook/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrCoordinatorStopped is returned when dispatching to a coordinator whose loop has exited.
var ErrCoordinatorStopped = errors.New("coordinator stopped")

const triggerQueueSize = 16

type envelope struct {
	trigger Trigger
	ack     chan struct{}
}

type gatewayResult struct {
	generation uint64
	triggerID  string
	op         string
	outcome    Outcome
}

// Coordinator turns triggers into identity requests, session storage, expiry
// scheduling and navigation. All reactions run on the goroutine calling Run,
// one at a time; identity requests run elsewhere and re-enter the loop with
// their result.
type Coordinator struct {
	gateway   Authenticator
	store     session.Store
	timer     Timer
	navigator Navigator
	handlers  []OutcomeHandler
	observers []TriggerObserver
	now       func() time.Time

	triggers chan envelope
	results  chan gatewayResult
	done     chan struct{}
	running  atomic.Bool
	wg       sync.WaitGroup

	// owned by the loop
	generation uint64
	schedule   uint64
	inflight   int
	waiting    []chan struct{}
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithTimer replaces the default expiry timer.
func WithTimer(t Timer) Option {
	return func(c *Coordinator) {
		c.timer = t
	}
}

// WithNavigator sets where navigation requests go.
func WithNavigator(n Navigator) Option {
	return func(c *Coordinator) {
		c.navigator = n
	}
}

// WithOutcomeHandler registers a receiver for emitted outcomes.
func WithOutcomeHandler(h OutcomeHandler) Option {
	return func(c *Coordinator) {
		c.handlers = append(c.handlers, h)
	}
}

// WithTriggerObserver registers a receiver notified of every trigger.
func WithTriggerObserver(o TriggerObserver) Option {
	return func(c *Coordinator) {
		c.observers = append(c.observers, o)
	}
}

// WithClock overrides the clock used for expiry calculations.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a coordinator. Without WithTimer it owns an
// ExpiryTimer which dispatches Logout when the session expires.
func NewCoordinator(gateway Authenticator, store session.Store, opts ...Option) (*Coordinator, error) {
	if gateway == nil || store == nil {
		return nil, fmt.Errorf("gateway and session store are required")
	}

	c := &Coordinator{
		gateway:   gateway,
		store:     store,
		navigator: noopNavigator{},
		now:       time.Now,
		triggers:  make(chan envelope, triggerQueueSize),
		results:   make(chan gatewayResult),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timer == nil {
		c.timer = NewExpiryTimer(c.expire)
	}

	return c, nil
}

// Run processes triggers until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("coordinator already running")
	}

	log.Debug().Msg("session coordinator started")

	for {
		select {
		case <-ctx.Done():
			c.timer.Disarm()
			close(c.done)
			c.wg.Wait()
			log.Debug().Msg("session coordinator stopped")
			return nil
		case env := <-c.triggers:
			if env.ack != nil {
				c.barrier(env.ack)
				continue
			}
			c.handle(ctx, env.trigger)
		case res := <-c.results:
			c.complete(ctx, res)
		}
	}
}

// Dispatch queues a trigger for the loop.
func (c *Coordinator) Dispatch(ctx context.Context, t Trigger) error {
	if c.stopped() {
		return ErrCoordinatorStopped
	}

	select {
	case c.triggers <- envelope{trigger: t}:
		return nil
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync blocks until every trigger dispatched before it has been handled and
// no identity request is outstanding.
func (c *Coordinator) Sync(ctx context.Context) error {
	if c.stopped() {
		return ErrCoordinatorStopped
	}

	ack := make(chan struct{})

	select {
	case c.triggers <- envelope{ack: ack}:
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) expire(schedule uint64) {
	if err := c.Dispatch(context.Background(), Logout{Reason: LogoutExpired, Schedule: schedule}); err != nil {
		log.Debug().Err(err).Msg("expiry after coordinator stopped")
	}
}

func (c *Coordinator) barrier(ack chan struct{}) {
	if c.inflight == 0 {
		close(ack)
		return
	}
	c.waiting = append(c.waiting, ack)
}

func (c *Coordinator) handle(ctx context.Context, t Trigger) {
	triggerID := newTriggerID()
	logger := log.With().
		Str("triggerID", triggerID).
		Str("trigger", triggerName(t)).
		Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Msg("handling trigger")

	for _, o := range c.observers {
		o.ObserveTrigger(t)
	}

	switch t := t.(type) {
	case SignupStart:
		c.startAuthentication(ctx, triggerID, "signUp", t.Credentials)
	case LoginStart:
		c.startAuthentication(ctx, triggerID, "signIn", t.Credentials)
	case Logout:
		c.logout(ctx, t)
	case AutoLogin:
		c.autoLogin(ctx)
	case AuthenticateSuccess:
		c.redirect(ctx, t)
	default:
		logger.Warn().Msg("ignoring unknown trigger")
	}
}

func (c *Coordinator) startAuthentication(ctx context.Context, triggerID, op string, creds Credentials) {
	generation := c.generation

	c.inflight++
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var outcome Outcome
		switch op {
		case "signUp":
			outcome = c.gateway.SignUp(ctx, creds)
		default:
			outcome = c.gateway.SignIn(ctx, creds)
		}

		select {
		case c.results <- gatewayResult{generation: generation, triggerID: triggerID, op: op, outcome: outcome}:
		case <-c.done:
		}
	}()
}

func (c *Coordinator) complete(ctx context.Context, res gatewayResult) {
	logger := log.With().Str("triggerID", res.triggerID).Str("op", res.op).Logger()
	ctx = logger.WithContext(ctx)

	defer c.settle()

	if res.generation != c.generation {
		telemetry.GetMetrics().StaleResultsTotal.Add(ctx, 1)
		logger.Info().Msg("discarding identity result issued before logout")
		return
	}

	switch o := res.outcome.(type) {
	case AuthenticateSuccess:
		c.accept(ctx, o)
		c.emit(o)
		c.redirect(ctx, o)
	case AuthenticateFailure:
		c.emit(o)
	default:
		logger.Warn().Msg("ignoring unknown outcome")
	}
}

func (c *Coordinator) settle() {
	c.inflight--
	if c.inflight > 0 {
		return
	}
	for _, ack := range c.waiting {
		close(ack)
	}
	c.waiting = nil
}

// accept persists the session and schedules its expiry.
func (c *Coordinator) accept(ctx context.Context, o AuthenticateSuccess) {
	if err := c.store.Save(ctx, o.Session()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to persist session")
	}
	c.schedule = c.timer.Arm(o.ExpiresIn)
}

func (c *Coordinator) logout(ctx context.Context, t Logout) {
	if t.Schedule != 0 && t.Schedule != c.schedule {
		telemetry.GetMetrics().StaleResultsTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Info().Uint64("schedule", t.Schedule).Msg("ignoring expiry of a replaced session")
		return
	}

	c.generation++
	c.schedule = 0
	c.timer.Disarm()

	if err := c.store.Clear(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to clear stored session")
	}

	c.navigator.Navigate(RouteAuth)

	reason := t.Reason
	if reason == "" {
		reason = LogoutUser
	}
	telemetry.GetMetrics().LogoutsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))

	zerolog.Ctx(ctx).Info().Str("reason", string(reason)).Msg("logged out")
}

func (c *Coordinator) autoLogin(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	stored, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			logger.Warn().Err(err).Msg("failed to read stored session")
		}
		logger.Debug().Msg("no stored session")
		return
	}

	if !stored.Valid() {
		logger.Debug().Msg("stored session has no token")
		return
	}

	now := c.now()
	if stored.IsExpired(now) {
		logger.Info().Time("expiresAt", stored.ExpiresAt).Msg("stored session expired")
		c.logout(ctx, Logout{Reason: LogoutExpired})
		return
	}

	success := AuthenticateSuccess{
		Email:     stored.Email,
		UserID:    stored.UserID,
		Token:     stored.Token,
		ExpiresAt: stored.ExpiresAt,
		ExpiresIn: stored.Remaining(now),
		Redirect:  false,
	}

	c.accept(ctx, success)
	telemetry.GetMetrics().SessionRestoresTotal.Add(ctx, 1)

	logger.Info().Str("email", success.Email).Dur("remaining", success.ExpiresIn).Msg("session restored")

	c.emit(success)
	c.redirect(ctx, success)
}

func (c *Coordinator) redirect(ctx context.Context, o AuthenticateSuccess) {
	if !o.Redirect {
		return
	}
	c.navigator.Navigate(RouteHome)
}

func (c *Coordinator) emit(o Outcome) {
	for _, h := range c.handlers {
		h.HandleOutcome(o)
	}
}

func triggerName(t Trigger) string {
	switch t.(type) {
	case SignupStart:
		return "signup-start"
	case LoginStart:
		return "login-start"
	case Logout:
		return "logout"
	case AutoLogin:
		return "auto-login"
	case AuthenticateSuccess:
		return "authenticate-success"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func newTriggerID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}
