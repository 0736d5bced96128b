package status

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/callebjorkell/trophy-node/internal/lcd"
	"github.com/callebjorkell/trophy-node/internal/link"
	"github.com/callebjorkell/trophy-node/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"html/template"
	"net/http"
	"time"
)

type Snapshot struct {
	IPv4      bool     `json:"ipv4"`
	IPv6      bool     `json:"ipv6"`
	LinkReady bool     `json:"linkReady"`
	Connected bool     `json:"connected"`
	Endpoint  string   `json:"endpoint"`
	Display   []string `json:"display"`
}

// Server exposes the node state over HTTP: an HTML page on /, JSON on /status and
// prometheus metrics on /metrics.
type Server struct {
	server   http.Server
	state    *link.State
	handle   *session.Handle
	endpoint string
}

func NewServer(addr string, state *link.State, handle *session.Handle, endpoint string) *Server {
	s := &Server{
		state:    state,
		handle:   handle,
		endpoint: endpoint,
	}
	s.server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Listen() error {
	log.Infof("Starting status server on %v", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	log.Debug("Closing status server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.page)
	mux.HandleFunc("/status", s.status)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Snapshot() Snapshot {
	ipv4, ipv6 := s.state.Snapshot()
	l1, l2 := lcd.Shown()
	return Snapshot{
		IPv4:      ipv4,
		IPv6:      ipv6,
		LinkReady: ipv4 && ipv6,
		Connected: s.handle.Connected(),
		Endpoint:  s.endpoint,
		Display:   []string{l1, l2},
	}
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		log.Warn("Unable to write status: ", err)
	}
}

var page = template.Must(template.New("page").Parse(`
<html>
<body style="font-family:sans-serif; font-size:12pt; background-color: #121212; color: #eee;">
<br><br><br>
<center>
<h1>Trophy node</h1>
<br>
<p>Link: {{ if .LinkReady }}up{{ else }}waiting (ipv4: {{ .IPv4 }}, ipv6: {{ .IPv6 }}){{ end }}</p>
<p>Server {{ .Endpoint }}: {{ if .Connected }}connected{{ else }}disconnected{{ end }}</p>
<pre>{{ range .Display }}{{ . }}
{{ end }}</pre>
</center>
</body>
</html>
`))

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, s.Snapshot()); err != nil {
		log.Warn("Unable to render status page: ", err)
	}
}
