package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/ragtp/internal/infrastructure/json"
)

// Version is reported by the status endpoint.
const Version = "0.1.0"

const statusOK = "ok"

type Handler struct {
	startedAt time.Time
}

// NewHandler measures uptime from startedAt, which should carry a
// monotonic clock reading (any value from time.Now does).
func NewHandler(startedAt time.Time) *Handler {
	return &Handler{startedAt: startedAt}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) error {
	return json.Write(w, http.StatusOK, healthResponse{
		Status: statusOK,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) error {
	return json.Write(w, http.StatusOK, statusResponse{
		Status:  statusOK,
		Version: Version,
		Uptime:  time.Since(h.startedAt).Seconds(),
	})
}
