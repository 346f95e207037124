package controllers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OmkarVetal12/synlawn/api/responses"
	"github.com/OmkarVetal12/synlawn/pkg/config"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(context.Context) error
}

// Dependency is a named backing service checked by the readiness probe.
type Dependency struct {
	Name   string
	Pinger pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Synlawn-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency concurrently and reports 503 when any
// fails. Dependencies without a pinger are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Synlawn-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			checks = map[string]string{}
			failed []string
		)
		eg := new(errgroup.Group)
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			eg.Go(func() error {
				err := dep.Pinger.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					checks[dep.Name] = "failed"
					failed = append(failed, dep.Name)
					return fmt.Errorf("%s: %w", dep.Name, err)
				}
				checks[dep.Name] = "ok"
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable").
				WithDetails(map[string]any{"dependencies": failed, "checks": checks}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
