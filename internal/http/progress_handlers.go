package httpapi

import (
	"encoding/json"
	"net/http"

	"edulab-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ProgressRequest struct {
	Status   *string  `json:"status"`
	Score    *float64 `json:"score"`
	Comments *string  `json:"comments"`
}

func (s *Server) StudentProgress(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	studentID, err := parseID(chi.URLParam(r, "studentID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}
	entries, err := s.Progress.ForStudent(actor, studentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]ProgressDTO, 0, len(entries))
	for _, prg := range entries {
		items = append(items, toProgressDTO(prg))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	studentID, err := parseID(chi.URLParam(r, "studentID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}
	labID, err := parseID(chi.URLParam(r, "labID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid lab ID")
		return
	}
	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	prg, err := s.Progress.Update(actor, studentID, labID, services.ProgressInput{
		Status:   req.Status,
		Score:    req.Score,
		Comments: req.Comments,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProgressDTO(prg))
}
