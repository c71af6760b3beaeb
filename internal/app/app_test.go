package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/uniformorders/internal/config"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	testhelpers "github.com/polkiloo/uniformorders/internal/test"
	"github.com/polkiloo/uniformorders/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestDispatcher() *worker.NotificationDispatcher {
	return worker.NewNotificationDispatcher(&testhelpers.WorkerFacadeStub{}, 10*time.Millisecond, 1, 1, discardLogger())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewNotificationDispatcherUsesConfig(t *testing.T) {
	facade, _, _ := newFacade()
	dispatcher := newNotificationDispatcher(workerParams{
		Facade: facade,
		Config: &config.Config{DispatchInterval: 15 * time.Second, DispatchBatchSize: 3, WorkerPoolSize: 4},
		Logger: discardLogger(),
	})
	if dispatcher == nil {
		t.Fatal("expected dispatcher instance")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	facade, _, _ := newFacade()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     server,
		Worker:     newTestDispatcher(),
		Facade:     facade,
		Config:     &config.Config{ShutdownTimeout: 100 * time.Millisecond},
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	hook := recorder.Hooks[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := hook.OnStart(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleBootstrapsAdmin(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	facade, users, _ := newFacade()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
		Worker:     newTestDispatcher(),
		Facade:     facade,
		Config:     &config.Config{ShutdownTimeout: 100 * time.Millisecond, AdminLogin: "root", AdminPassword: "s3cret"},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	t.Cleanup(func() { _ = hook.OnStop(context.Background()) })

	admin, err := users.GetByLogin(context.Background(), "root")
	if err != nil {
		t.Fatalf("expected admin to be created: %v", err)
	}
	if admin.Role != model.RoleSuperAdmin {
		t.Fatalf("expected super admin role, got %s", admin.Role)
	}
}

func TestRegisterLifecycleAdminFailureAbortsStart(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	facade, users, _ := newFacade()
	users.Err = errors.New("db down")

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Worker:     newTestDispatcher(),
		Facade:     facade,
		Config:     &config.Config{ShutdownTimeout: 100 * time.Millisecond, AdminLogin: "root", AdminPassword: "s3cret"},
	})

	if err := recorder.Hooks[0].OnStart(context.Background()); err == nil {
		t.Fatal("expected start to fail when admin cannot be bootstrapped")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	facade, _, _ := newFacade()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "bad addr"},
		Worker:     newTestDispatcher(),
		Facade:     facade,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestLifecycleRecorderAppend(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	recorder.Append(fx.Hook{})
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected hook to be appended")
	}
}
