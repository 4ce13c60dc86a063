package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/config"
	"usersgrid/app/internal/database"
	"usersgrid/app/internal/server"
	"usersgrid/app/internal/session"
	"usersgrid/app/internal/stats"
	"usersgrid/app/internal/tui"
)

// App объединяет подготовленную БД, сессию и её HTTP-поверхность.
type App struct {
	Storage  *database.Storage
	Session  *session.Session
	Recorder *stats.Recorder
	History  *stats.History

	server *server.Server
}

// Open подключается к БД, создаёт и заполняет таблицу, читает её
// столбцы и загружает первые строки.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	storage, err := database.New(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if err := database.ApplyMigrations(storage); err != nil {
		storage.Stop()
		return nil, err
	}
	logrus.Info("Migrations applied successfully")

	recorder := stats.NewRecorder()
	sess, err := session.New(ctx, storage, cfg.Table, session.WithRecorder(recorder))
	if err != nil {
		storage.Stop()
		return nil, err
	}

	history := &stats.History{}
	return &App{
		Storage:  storage,
		Session:  sess,
		Recorder: recorder,
		History:  history,
		server:   server.New(sess, recorder, history),
	}, nil
}

func (a *App) Close() error {
	return a.Storage.Stop()
}

// RunTUI показывает окно терминала, пока его не закроют.
func (a *App) RunTUI(cfg config.Config) error {
	return tui.Run(a.Session, cfg.Width, cfg.Height)
}

// Handler возвращает HTTP-поверхность сессии. Сервер создаётся один раз
// в Open.
func (a *App) Handler() http.Handler {
	return a.server
}

// Serve слушает cfg.Addr до отмены ctx.
func (a *App) Serve(ctx context.Context, cfg config.Config) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Addr).Info("Listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
