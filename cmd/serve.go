package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

// serveCmd exposes the read side over HTTP. Mutations stay on the CLI where
// the acting identity is explicit.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only lot tracking API",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		listenAddr, _ := cmd.Flags().GetString("listen")
		server := &http.Server{
			Addr:              listenAddr,
			Handler:           newAPIRouter(svc),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", listenAddr))
			errCh <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errs.Wrap(err, "serve http")
		}
	}),
}

func newAPIRouter(svc *tracking.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Get("/lots", func(w http.ResponseWriter, r *http.Request) {
		filter := ports.LotFilter{
			Manufacturer: strings.TrimSpace(r.URL.Query().Get("manufacturer")),
		}
		for _, state := range r.URL.Query()["state"] {
			filter.States = append(filter.States, strings.ToUpper(strings.TrimSpace(state)))
		}

		lots, err := svc.ListLots(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lots)
	})

	router.Get("/lots/{lotID}", func(w http.ResponseWriter, r *http.Request) {
		lotID, ok := lotIDFromRequest(w, r)
		if !ok {
			return
		}
		detail, err := svc.GetLotDetail(r.Context(), lotID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	})

	router.Get("/lots/{lotID}/report", func(w http.ResponseWriter, r *http.Request) {
		lotID, ok := lotIDFromRequest(w, r)
		if !ok {
			return
		}
		report, err := svc.GetLabReport(r.Context(), lotID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	router.Get("/lots/{lotID}/events", func(w http.ResponseWriter, r *http.Request) {
		lotID, ok := lotIDFromRequest(w, r)
		if !ok {
			return
		}
		events, err := svc.ListLotEvents(r.Context(), lotID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	router.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		after, err := parseQueryUint(r.URL.Query().Get("after"), 0)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid after parameter"})
			return
		}
		limit, err := parseQueryUint(r.URL.Query().Get("limit"), 100)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit parameter"})
			return
		}

		events, err := svc.ListEventsAfter(r.Context(), after, int(limit))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	router.Get("/identities/{identity}/roles", func(w http.ResponseWriter, r *http.Request) {
		identity := chi.URLParam(r, "identity")
		roles, err := svc.ListIdentityRoles(r.Context(), identity)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"identity": identity, "roles": roles})
	})

	return router
}

func lotIDFromRequest(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	lotID, err := strconv.ParseUint(chi.URLParam(r, "lotID"), 10, 64)
	if err != nil || lotID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lot id"})
		return 0, false
	}
	return lotID, true
}

func parseQueryUint(raw string, fallback uint64) (uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainlot.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainlot.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "Listen address for the HTTP API")
}
