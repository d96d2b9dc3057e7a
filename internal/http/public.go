package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"edulab-backend-go/internal/models"
)

type VisitRequest struct {
	Path     *string `json:"path"`
	Referrer *string `json:"referrer"`
}

type VisitCountResponse struct {
	Total int `json:"total"`
}

// TrackVisit records an anonymous page view. Failures are swallowed: the
// counter is best-effort and must never surface errors to visitors.
func (s *Server) TrackVisit(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	visit := models.SiteVisit{
		ID:        uuid.NewString(),
		IPAddress: nullIfEmpty(resolveClientIP(r)),
		UserAgent: nullIfEmpty(trimString(r.Header.Get("User-Agent"), 512)),
		Path:      nullIfEmpty(trimString(ptrToString(req.Path), 255)),
		Referrer:  nullIfEmpty(trimString(ptrToString(req.Referrer), 512)),
		CreatedAt: time.Now().UTC(),
	}
	_, _ = s.DB.NamedExec(`
INSERT INTO site_visits (id, ip_address, user_agent, path, referrer, created_at)
VALUES (:id, :ip_address, :user_agent, :path, :referrer, :created_at)
`, visit)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) VisitCount(w http.ResponseWriter, r *http.Request) {
	var total int
	_ = s.DB.Get(&total, `SELECT count(*) FROM site_visits`)
	WriteJSON(w, http.StatusOK, VisitCountResponse{Total: total})
}

func resolveClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}

func trimString(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

func nullIfEmpty(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
