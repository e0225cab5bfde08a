package master

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/loadcoord/loadcoord/internal/wire"
)

// ProgressHandler returns an http.HandlerFunc exposing wire.RouteRemoteProgress,
// decoding each posted StatReport and feeding it into the pool.
func (p *Pool) ProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeStatus(w, http.StatusMethodNotAllowed, "")
			return
		}

		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			writeStatus(w, http.StatusBadRequest, err.Error())
			return
		}

		var report wire.StatReport
		if err := json.Unmarshal(body, &report); err != nil {
			writeStatus(w, http.StatusBadRequest, err.Error())
			return
		}

		p.ReceiveProgress(&report)
		writeStatus(w, http.StatusOK, "")
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if body != "" {
		_, _ = w.Write([]byte(body))
	}
}
