package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/client"
	"github.com/wolfeidau/recipebook/internal/config"
	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/recipes"
	"github.com/wolfeidau/recipebook/internal/session"
	"github.com/wolfeidau/recipebook/internal/shopping"
	"github.com/wolfeidau/recipebook/internal/state"
)

// runtime wires the session coordinator to the application state for the
// lifetime of one command.
type runtime struct {
	cfg         config.Config
	state       *state.Store
	coordinator *auth.Coordinator
	httpClient  *http.Client

	stop    context.CancelFunc
	stopped chan struct{}
}

func startRuntime(ctx context.Context, globals *Globals) (*runtime, error) {
	cfg, err := globals.loadConfig()
	if err != nil {
		return nil, err
	}

	httpClient := client.NewHTTPClient(client.Config{
		Timeout: cfg.Timeout,
		Debug:   globals.Debug,
	})

	gateway, err := auth.NewGateway(httpClient, cfg.Gateway())
	if err != nil {
		return nil, fmt.Errorf("failed to create identity gateway: %w", err)
	}

	var sessions session.Store
	if globals.Ephemeral {
		sessions = session.NewMemoryStore()
	} else {
		sessions, err = session.NewFileStore(cfg.SessionDir, cfg.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
	}

	st := state.New()

	coordinator, err := auth.NewCoordinator(gateway, sessions,
		auth.WithNavigator(st),
		auth.WithOutcomeHandler(st),
		auth.WithTriggerObserver(st),
	)
	if err != nil {
		return nil, err
	}

	runCtx, stop := context.WithCancel(ctx)
	rt := &runtime{
		cfg:         cfg,
		state:       st,
		coordinator: coordinator,
		httpClient:  httpClient,
		stop:        stop,
		stopped:     make(chan struct{}),
	}

	go func() {
		defer close(rt.stopped)
		if err := coordinator.Run(runCtx); err != nil {
			log.Error().Err(err).Msg("session coordinator failed")
		}
	}()

	return rt, nil
}

func (r *runtime) Close() {
	r.stop()
	<-r.stopped
}

// dispatch hands a trigger to the coordinator and waits for every reaction,
// including any identity request it started.
func (r *runtime) dispatch(ctx context.Context, t auth.Trigger) error {
	if err := r.coordinator.Dispatch(ctx, t); err != nil {
		return err
	}
	return r.coordinator.Sync(ctx)
}

func (r *runtime) user() *models.Session {
	return state.Select(r.state, func(st state.AppState) *models.Session { return st.Auth.User })
}

// authenticate runs a sign-up or sign-in trigger and reports its outcome.
func (r *runtime) authenticate(ctx context.Context, t auth.Trigger) (*models.Session, error) {
	if err := r.dispatch(ctx, t); err != nil {
		return nil, err
	}

	st := r.state.State()
	if st.Auth.Error != "" {
		return nil, errors.New(st.Auth.Error)
	}
	if st.Auth.User == nil {
		return nil, state.ErrNotAuthenticated
	}

	return st.Auth.User, nil
}

// restore loads the stored session, logging out if it has expired.
func (r *runtime) restore(ctx context.Context) (*models.Session, error) {
	if err := r.dispatch(ctx, auth.AutoLogin{}); err != nil {
		return nil, err
	}

	user := r.user()
	if user == nil {
		return nil, state.ErrNotAuthenticated
	}

	return user, nil
}

func (r *runtime) recipes() (*recipes.Service, error) {
	if r.cfg.DatabaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	c, err := recipes.NewClient(r.httpClient, r.cfg.DatabaseURL, r.state.TokenSource())
	if err != nil {
		return nil, err
	}

	return recipes.NewService(c, r.state), nil
}

func (r *runtime) shoppingList() (*shopping.FileList, error) {
	list, err := shopping.NewFileList(r.cfg.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open shopping list: %w", err)
	}
	return list, nil
}
