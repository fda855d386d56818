package schedules

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/core/store"
)

func seededStore(t *testing.T) store.ScheduleStore {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })
	_, err := st.Save(context.Background(), &model.Schedule{
		MicrogridID: "mg-1",
		Date:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Mode:        model.ModeCost,
	})
	require.NoError(t, err)
	return st
}

func TestHandlerActiveSchedule(t *testing.T) {
	h := NewHandler(seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/schedules?microgrid=mg-1&date=2026-06-01", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got model.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "mg-1", got.MicrogridID)
	assert.NotEmpty(t, got.ID)
}

func TestHandlerList(t *testing.T) {
	h := NewHandler(seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/schedules?microgrid=mg-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestHandlerNotFound(t *testing.T) {
	h := NewHandler(seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/schedules?microgrid=mg-1&date=2026-01-01", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerBadRequests(t *testing.T) {
	h := NewHandler(seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/schedules", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing microgrid")

	req = httptest.NewRequest(http.MethodGet, "/api/schedules?microgrid=mg-1&date=junk", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "invalid date")

	req = httptest.NewRequest(http.MethodPost, "/api/schedules?microgrid=mg-1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerEmptyListIsJSONArray(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/schedules?microgrid=nobody", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
