package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/brief"
	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// liveScript reloads the page when the server reports a data change.
const liveScript = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"/ws/live");` +
	`ws.onmessage=function(){location.reload();};})();`

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	v, err := s.newViewer(source)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !v.Allowed(source) {
		http.Error(w, "unknown brief source", http.StatusBadRequest)
		return
	}

	v.Load(r.Context())

	doc := v.Document()
	if s.hub != nil {
		doc.Do(func(root *html.Node) {
			if body := page.FindAll(root, page.ByTag("body")); len(body) > 0 {
				body[0].AppendChild(page.El("script", nil, page.Text(liveScript)))
			}
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := doc.Render(w); err != nil {
		s.logger.Error("writing page", "error", err)
	}
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	v, err := s.newViewer("")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	options, err := v.FetchArchive(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	v, err := s.newViewer(source)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !v.Allowed(source) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown brief source"})
		return
	}

	b, err := v.FetchBrief(r.Context(), v.SourcePath(source))
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// statusFor maps a document error to the status returned to API clients.
func statusFor(err error) int {
	switch {
	case fetch.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, brief.ErrMalformed), errors.Is(err, fetch.ErrHTTP), errors.Is(err, fetch.ErrNetwork),
		errors.Is(err, fetch.ErrTooLarge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
