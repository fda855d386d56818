// Package schedules exposes persisted schedules over a read-only HTTP API.
package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/core/store"
)

// NewHandler returns an HTTP handler serving GET /api/schedules.
// With a date query parameter it returns the active schedule for that day,
// otherwise it lists every schedule for the microgrid.
func NewHandler(st store.ScheduleStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		microgrid := r.URL.Query().Get("microgrid")
		if microgrid == "" {
			http.Error(w, "missing microgrid parameter", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if raw := r.URL.Query().Get("date"); raw != "" {
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			sched, err := st.Active(r.Context(), microgrid, date)
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "schedule not found", http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if err := json.NewEncoder(w).Encode(sched); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		list, err := st.List(r.Context(), microgrid)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []*model.Schedule{}
		}
		if err := json.NewEncoder(w).Encode(list); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
