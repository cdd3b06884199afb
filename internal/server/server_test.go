package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okushigue/rzqr/internal/database"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/modules/jobs"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/runs"
	"github.com/okushigue/rzqr/internal/modules/simulator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func setupServer(t *testing.T) (*Server, *events.Bus) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := database.New(database.Config{Path: "file::memory:", Name: "runs"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	bus := events.NewBus()
	em := events.NewManager(bus, logger)
	sim := simulator.New(logger, simulator.Config{Mode: simulator.ModeExact})
	repo := runs.NewRepository(db.Conn(), logger)

	defaults := pipeline.Request{Precision: domain.DefaultPrecisionConfig(), Shots: 1024}
	defaults.Precision.DecimalDigits = 20

	s := New(Config{
		Log:      logger,
		Port:     0,
		DataDir:  t.TempDir(),
		LedgerDB: db,
		EventBus: bus,
		Pipeline: pipeline.NewService(sim, logger, pipeline.WithRecorder(repo), pipeline.WithEvents(em)),
		Defaults: defaults,
		Runs:     repo,
		Jobs:     jobs.NewService(sim, time.Minute, em, logger),
	})
	return s, bus
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSystemHealth(t *testing.T) {
	s, _ := setupServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/system/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Data.Status)
	assert.Equal(t, "ok", response.Data.Ledger)
	assert.Equal(t, simulator.Identifier, response.Data.Backend)
	assert.Positive(t, response.Data.Goroutines)
}

func TestRunIsRecordedAndListed(t *testing.T) {
	s, _ := setupServer(t)
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/pipeline/run", strings.NewReader(`{"influence_radius": 0}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var run struct {
		Data struct {
			Run domain.RunResult `json:"run"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&run))
	require.NotEmpty(t, run.Data.Run.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/runs/"+run.Data.Run.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), run.Data.Run.ID)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	router := s.Router()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rzqr_http_requests_total")
}

func TestEventsWebSocket(t *testing.T) {
	s, bus := setupServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws?types=RUN_COMPLETED"
	conn, resp, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg StreamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "connected", msg.Type)

	bus.Emit(events.RunStarted, "pipeline", nil)
	bus.Emit(events.RunCompleted, "pipeline", map[string]interface{}{"run_id": "r1"})

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, string(events.RunCompleted), msg.Type)
	assert.Equal(t, "r1", msg.Data["run_id"])
}
