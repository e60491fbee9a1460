package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/engine"
	"github.com/sells-group/r2ready/internal/intake"
	"github.com/sells-group/r2ready/internal/model"
	"github.com/sells-group/r2ready/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assessment HTTP server",
	Long: `Serves assessment reads and edits. Answer edits are accepted immediately
and recomputed in the background after a debounce window; reads return
the cached result and tolerate that staleness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		strategy, err := e.Strategy()
		if err != nil {
			return err
		}

		sched := engine.NewScheduler(e.Orch, strategy,
			time.Duration(cfg.Engine.DebounceMS)*time.Millisecond,
			cfg.Engine.MaxPerSecond,
		)
		defer sched.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /intake/{facility}", func(w http.ResponseWriter, r *http.Request) {
			facilityID := r.PathValue("facility")

			var req struct {
				Version int            `json:"version"`
				Answers map[string]any `json:"answers"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			profile, err := intake.Normalize(facilityID, req.Version, req.Answers, e.Snapshot.Flags)
			if err != nil {
				var verr *intake.ValidationError
				if errors.As(err, &verr) {
					writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
						"error":  "invalid submission",
						"fields": verr.Fields,
					})
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}

			if err := e.Store.PutProfile(r.Context(), profile); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{
				"facility_id": facilityID,
				"version":     req.Version,
				"flags":       len(profile.Flags),
			})
		})

		mux.HandleFunc("PUT /assessments/{id}/answers/{question}", func(w http.ResponseWriter, r *http.Request) {
			assessmentID := r.PathValue("id")

			var req struct {
				Value string `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			value, err := model.ParseAnswerValue(req.Value)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			a := model.Answer{
				AssessmentID: assessmentID,
				QuestionID:   r.PathValue("question"),
				Value:        value,
				Active:       true,
				UpdatedAt:    time.Now(),
			}
			if err := e.Store.UpsertAnswer(r.Context(), a); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}

			// Recompute happens after the debounce window; the caller does
			// not wait for it.
			sched.Request(ctx, assessmentID)
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		})

		mux.HandleFunc("POST /assessments/{id}/recompute", func(w http.ResponseWriter, r *http.Request) {
			result, err := sched.Flush(r.Context(), r.PathValue("id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusNotFound, "assessment not found")
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		mux.HandleFunc("GET /assessments/{id}/result", func(w http.ResponseWriter, r *http.Request) {
			result, err := e.Store.GetScoreResult(r.Context(), r.PathValue("id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusNotFound, "no result computed yet")
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		mux.HandleFunc("GET /assessments/{id}/blockers", func(w http.ResponseWriter, r *http.Request) {
			blockers, err := e.Orch.GetCriticalBlockers(r.Context(), r.PathValue("id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusNotFound, "assessment not found")
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"critical_blockers":       blockers,
				"critical_blockers_count": len(blockers),
			})
		})

		mux.HandleFunc("GET /assessments/{id}/maturity", func(w http.ResponseWriter, r *http.Request) {
			history, err := e.Store.ListMaturityScores(r.Context(), r.PathValue("id"))
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, history)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
