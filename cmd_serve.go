package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/controller"
	"github.com/golammostafa13/chartstudio/database"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/kv"
	"github.com/golammostafa13/chartstudio/logger"
	"github.com/golammostafa13/chartstudio/query"
	"github.com/golammostafa13/chartstudio/render"
	"github.com/golammostafa13/chartstudio/services"
	"github.com/golammostafa13/chartstudio/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chart session over HTTP and WebSocket",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port or address (default 8080)")
	serveCmd.Flags().String("state", "", "SQLite file for the persisted session (default in memory)")
	serveCmd.Flags().String("data-root", "", "directory file data sources are read from")
	serveCmd.Flags().StringSlice("allow-sources", nil, "data source types clients may load (default static,sql)")
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("state.path", serveCmd.Flags().Lookup("state"))
	_ = v.BindPFlag("sources.root", serveCmd.Flags().Lookup("data-root"))
	_ = v.BindPFlag("sources.allowed", serveCmd.Flags().Lookup("allow-sources"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.ComponentLogger("serve")
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	states, err := openStateStore(cfg.State.Path)
	if err != nil {
		return err
	}
	defer states.Close()

	deps := datasource.Deps{}
	if conn := cfg.Database.Connection(); conn.Configured() {
		db, err := database.Open(ctx, conn, database.WithMaxRows(cfg.Database.MaxRows))
		if err != nil {
			log.Warnw("Database unavailable, SQL data sources disabled", logger.FieldError, err)
		} else {
			defer db.Close()
			deps.SQL = db
		}
	}

	var session *services.Session
	hub := render.NewHub(ctx,
		render.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		render.WithStyleHandler(func(bucket string, patch []byte) error {
			return session.EditStyleJSON(bucket, patch, true)
		}))
	go hub.Run()

	session = services.NewSession(store.New(ctx, states), services.Options{
		Backend: func(t chart.ChartType) (controller.Backend, error) {
			return hub.View(t), nil
		},
		Deps:     deps,
		Debounce: cfg.Debounce,
		Width:    cfg.Render.Width,
		Height:   cfg.Render.Height,
	})
	defer session.Close()

	restore(ctx, session)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"POST", "GET", "OPTIONS", "PUT", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
	}).Handler(query.NewHandler(session, hub, query.WithSourcePolicy(cfg.Sources.Policy())).Routes())

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server starting", logger.FieldAddress, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStateStore(path string) (kv.Store, error) {
	if path == "" {
		return kv.NewMemory(), nil
	}
	return kv.OpenSQLite(path)
}

// restore reloads the persisted data source so a restarted server shows the
// same chart.
func restore(ctx context.Context, session *services.Session) {
	src := session.State().DataSourceConfig
	if (src.Type == datasource.KindStatic || src.Type == "") && src.JSON == "" {
		return
	}
	if _, err := session.Reload(ctx); err != nil {
		logger.Logger.Warnw("Failed to restore data source",
			logger.FieldSource, string(src.Type), logger.FieldError, err)
	}
}
