package httpapi

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"go.uber.org/zap"
)

// uiLogLimit caps how many entries the HTML page renders; /logs.json
// returns the whole buffer.
const uiLogLimit = 500

// ControllerPage serves the controller UI for /, /controller and /r/{room}.
// The page reads the room from its own URL; the server does not care.
func ControllerPage(staticDir string) http.HandlerFunc {
	page := filepath.Join(staticDir, "controller.html")
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, page)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RequireToken gates a route group behind a shared secret, compared by
// exact string equality against ?token= or the X-Log-Token header. An
// empty configured token leaves the group unprotected.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.URL.Query().Get("token")
			if got == "" {
				got = r.Header.Get("X-Log-Token")
			}
			if got != token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var logsTmpl = template.Must(template.New("logs").Funcs(template.FuncMap{
	"pretty": func(data map[string]any) string {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>Relay Logs</title>
  <style>
    body{font-family:system-ui;margin:20px;background:#0b1020;color:#eaf0ff}
    a{color:#5eead4}
    .muted{opacity:.7}
    table{width:100%;border-collapse:collapse;margin-top:12px}
    th,td{border-bottom:1px solid rgba(255,255,255,.12);padding:10px 8px;text-align:left;vertical-align:top}
    th{font-size:12px;letter-spacing:.12em;text-transform:uppercase;opacity:.75}
    .pill{display:inline-block;border:1px solid rgba(255,255,255,.16);padding:2px 8px;border-radius:999px;font-size:12px;opacity:.9}
    .wrap{white-space:pre-wrap;word-break:break-word}
  </style>
</head>
<body>
  <h1>Relay Logs</h1>
  <div class="muted">Showing the newest {{len .Rows}} entries (max {{.Limit}} in the UI). JSON: <a href="/logs.json">/logs.json</a></div>
  <table>
    <thead>
      <tr><th>Time (UTC)</th><th>Room</th><th>Event</th><th>Details</th></tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr>
        <td class="muted">{{.TS.Format "2006-01-02 15:04:05.000"}}</td>
        <td><span class="pill">{{.Room}}</span></td>
        <td><b>{{.Type}}</b></td>
        <td class="wrap">{{pretty .Data}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
</body>
</html>`))

// LogsPage renders the newest audit entries as an HTML table.
func LogsPage(logs *auditlog.Log, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := logs.Snapshot()
		if len(rows) > uiLogLimit {
			rows = rows[:uiLogLimit]
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := logsTmpl.Execute(w, struct {
			Rows  []auditlog.Entry
			Limit int
		}{Rows: rows, Limit: uiLogLimit}); err != nil {
			log.Warn("render logs page", zap.Error(err))
		}
	}
}

// LogsJSON returns every retained entry, newest first.
func LogsJSON(logs *auditlog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := logs.Snapshot()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(struct {
			Count int             `json:"count"`
			Logs  []auditlog.Entry `json:"logs"`
		}{Count: len(entries), Logs: entries})
	}
}
