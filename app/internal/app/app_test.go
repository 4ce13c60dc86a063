package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersgrid/app/internal/config"
	"usersgrid/app/internal/model"
)

func TestOpenSeedsAndIntrospects(t *testing.T) {
	a, err := Open(context.Background(), config.Default())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []model.UserRecord{{ID: 1, Name: "Hello"}, {ID: 2, Name: "World"}}, a.Session.Rows())
	assert.Len(t, a.Session.Columns(), 2)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/getRows", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerIsBuiltOnce(t *testing.T) {
	a, err := Open(context.Background(), config.Default())
	require.NoError(t, err)
	defer a.Close()

	assert.Same(t, a.Handler(), a.Handler())
	require.Len(t, a.History.All(), 1)

	require.NoError(t, a.Session.Load(context.Background()))
	assert.Len(t, a.History.All(), 2)
}

func TestOpenMissingTableIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Table = "customers"

	_, err := Open(context.Background(), cfg)
	assert.True(t, errors.Is(err, model.ErrConnection), "got %v", err)
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := Open(context.Background(), config.Default())
	require.NoError(t, err)
	defer a.Close()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Addr = l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, cfg) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Addr + "/getRows")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
