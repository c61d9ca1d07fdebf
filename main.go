package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"quotelines/collections"
	"quotelines/config"
	"quotelines/handlers"
	"quotelines/logger"
	"quotelines/metrics"
	"quotelines/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	appLog := logger.New(logger.Options{
		ServiceName: "quotelines",
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      os.Stdout,
	})

	app := pocketbase.New()
	st := store.New(app, cfg.SearchLimit)

	rootCtx, stopEditors := context.WithCancel(context.Background())
	editorMetrics := metrics.NewEditorMetrics(prometheus.DefaultRegisterer)
	registry := handlers.NewEditorRegistry(rootCtx, st, cfg, appLog).WithMetrics(editorMetrics)

	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "seed-catalog",
		Short: "Create the quote collections and insert the sample product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := collections.Setup(app, appLog); err != nil {
				return err
			}
			if err := collections.SeedCatalog(app, appLog); err != nil {
				return err
			}
			_, err := collections.SeedSampleQuote(app, appLog)
			return err
		},
	})

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app, appLog); err != nil {
			return err
		}
		if err := collections.SeedCatalog(app, appLog); err != nil {
			appLog.Error(context.Background(), "seed catalog failed", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.RequestLogger(appLog))

		// ── Quote editor ─────────────────────────────────────────
		se.Router.GET("/quotes/{quoteId}/editor", handlers.HandleEditorState(registry))
		se.Router.POST("/quotes/{quoteId}/editor/reload", handlers.HandleEditorReload(registry))
		se.Router.POST("/quotes/{quoteId}/editor/select", handlers.HandleEditorSelect(registry))
		se.Router.POST("/quotes/{quoteId}/editor/toggle", handlers.HandleEditorToggle(registry))
		se.Router.POST("/quotes/{quoteId}/editor/cancel", handlers.HandleEditorCancel(registry))
		se.Router.POST("/quotes/{quoteId}/editor/insert", handlers.HandleEditorInsert(registry))
		se.Router.POST("/quotes/{quoteId}/editor/remove", handlers.HandleEditorRemove(registry))
		se.Router.POST("/quotes/{quoteId}/editor/field", handlers.HandleEditorField(registry))
		se.Router.POST("/quotes/{quoteId}/editor/discount", handlers.HandleEditorDiscount(registry))
		se.Router.POST("/quotes/{quoteId}/editor/search", handlers.HandleEditorSearch(registry))
		se.Router.POST("/quotes/{quoteId}/editor/focus", handlers.HandleEditorFocus(registry))
		se.Router.POST("/quotes/{quoteId}/editor/blur", handlers.HandleEditorBlur(registry))
		se.Router.POST("/quotes/{quoteId}/editor/pick", handlers.HandleEditorPick(registry))
		se.Router.POST("/quotes/{quoteId}/editor/save", handlers.HandleEditorSave(registry))

		// ── Quote export ─────────────────────────────────────────
		se.Router.GET("/quotes/{quoteId}/export/excel", handlers.HandleQuoteExportExcel(app, st, appLog))
		se.Router.GET("/quotes/{quoteId}/export/pdf", handlers.HandleQuoteExportPDF(app, st, appLog))

		se.Router.GET("/metrics", handlers.HandleMetrics(prometheus.DefaultGatherer))

		// Open the most recent quote, creating a sample one on a fresh install
		se.Router.GET("/", func(e *core.RequestEvent) error {
			q, err := collections.SeedSampleQuote(app, appLog)
			if err != nil {
				return e.String(http.StatusInternalServerError, "No quote available")
			}
			return e.Redirect(http.StatusFound, "/quotes/"+q.Id+"/editor")
		})

		return se.Next()
	})

	// Editor sessions are dropped when their quote is deleted
	app.OnRecordAfterDeleteSuccess("quotes").BindFunc(func(e *core.RecordEvent) error {
		registry.Close(e.Record.Id)
		return e.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		registry.CloseAll()
		stopEditors()
		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
