package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/trezcool/codekids/apps/api/di"
	echoapi "github.com/trezcool/codekids/apps/api/echo"
	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/user"
	"github.com/trezcool/codekids/storage/seed"
)

func main() {
	c, err := di.New(nil)
	must(err)

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		storeLoggerParam di.StoreLoggerParam,
		data seed.Data,
		usrSvc *user.Service,
		server echoapi.Server,
		zl *zap.Logger,
	) {
		defer func() { _ = zl.Sync() }()

		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer logger.Info("Application stopped")

		storeLogger := storeLoggerParam.Logger
		unsubscribe := usrSvc.Subscribe(func(evt user.Event) {
			storeLogger.Debug("store changed", map[string]interface{}{
				"op":    evt.Op,
				"ids":   evt.IDs,
				"users": len(evt.Users),
			})
		})
		defer unsubscribe()

		if _, err := data.Apply(context.Background(), usrSvc); err != nil {
			logger.Fatal(fmt.Sprintf("seeding users: %v", err), err)
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.Publish("courses", expvar.Func(func() interface{} { return len(data.Courses) }))

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
