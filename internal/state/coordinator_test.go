package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/session"
)

type heldGateway struct {
	release chan struct{}
}

func (h *heldGateway) SignUp(ctx context.Context, creds auth.Credentials) auth.Outcome {
	return h.SignIn(ctx, creds)
}

func (h *heldGateway) SignIn(ctx context.Context, creds auth.Credentials) auth.Outcome {
	<-h.release
	return signedIn()
}

func TestStore_logoutDuringLoginClearsLoading(t *testing.T) {
	s := New(WithClock(func() time.Time { return fixedNow }))
	gateway := &heldGateway{release: make(chan struct{})}

	c, err := auth.NewCoordinator(gateway, session.NewMemoryStore(),
		auth.WithNavigator(s),
		auth.WithOutcomeHandler(s),
		auth.WithTriggerObserver(s),
		auth.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = c.Run(ctx)
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	require.NoError(t, c.Dispatch(ctx, auth.LoginStart{Credentials: auth.Credentials{Email: "a@b.com", Password: "x"}}))
	require.NoError(t, c.Dispatch(ctx, auth.Logout{}))

	_, err = s.Await(ctx, func(st AppState) bool { return st.Route == auth.RouteAuth })
	require.NoError(t, err)

	close(gateway.release)
	require.NoError(t, c.Sync(ctx))

	st := s.State()
	assert.Nil(t, st.Auth.User)
	assert.False(t, st.Auth.Loading)
	assert.Equal(t, auth.RouteAuth, st.Route)
}
