package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireToken_UnprotectedWhenUnconfigured(t *testing.T) {
	h := RequireToken("")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireToken_QueryParam(t *testing.T) {
	h := RequireToken("s3cret")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?token=s3cret", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?token=wrong", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireToken_Header(t *testing.T) {
	h := RequireToken("s3cret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	req.Header.Set("X-Log-Token", "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogsJSON_NewestFirstWithCount(t *testing.T) {
	logs := auditlog.New(10)
	logs.Record("renderer_connected", "baden", map[string]any{"ip": "1.2.3.4"})
	logs.Record("controller_connected", "baden", map[string]any{"cid": "x"})

	rec := httptest.NewRecorder()
	LogsJSON(logs)(rec, httptest.NewRequest(http.MethodGet, "/logs.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body struct {
		Count int             `json:"count"`
		Logs  []auditlog.Entry `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	require.Equal(t, "controller_connected", body.Logs[0].Type)
	require.Equal(t, "renderer_connected", body.Logs[1].Type)
}

func TestLogsPage_RendersAndEscapes(t *testing.T) {
	logs := auditlog.New(10)
	logs.Record("game_event", "baden", map[string]any{"detail": "<script>alert(1)</script>"})

	rec := httptest.NewRecorder()
	LogsPage(logs, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "game_event")
	require.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
