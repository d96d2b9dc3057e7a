package httpapi

import (
	"encoding/json"
	"net/http"

	"edulab-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type LabRequest struct {
	Name         string  `json:"name"`
	SubjectID    int64   `json:"subjectId"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
}

type LabUpdateRequest struct {
	Name         *string `json:"name"`
	SubjectID    *int64  `json:"subjectId"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
}

type LabStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) ListLabs(w http.ResponseWriter, r *http.Request) {
	var subjectID *int64
	if raw := r.URL.Query().Get("subject_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid subject ID")
			return
		}
		subjectID = &id
	}
	labs, err := s.Labs.ListLabs(subjectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]LabDTO, 0, len(labs))
	for _, lab := range labs {
		items = append(items, toLabDTO(lab))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetLab(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "labID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid lab ID")
		return
	}
	lab, err := s.Labs.LabByID(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toLabDTO(lab))
}

func (s *Server) CreateLab(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	var req LabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	lab, err := s.Labs.CreateLab(actor, services.LabInput{
		Name:         req.Name,
		SubjectID:    req.SubjectID,
		Description:  req.Description,
		Instructions: req.Instructions,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toLabDTO(lab))
}

func (s *Server) UpdateLab(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	id, err := parseID(chi.URLParam(r, "labID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid lab ID")
		return
	}
	var req LabUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	lab, err := s.Labs.UpdateLab(actor, id, services.LabUpdateInput{
		Name:         req.Name,
		SubjectID:    req.SubjectID,
		Description:  req.Description,
		Instructions: req.Instructions,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toLabDTO(lab))
}

func (s *Server) SetLabStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "labID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid lab ID")
		return
	}
	var req LabStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	lab, err := s.Labs.SetStatus(id, req.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toLabDTO(lab))
}

func (s *Server) DeleteLab(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	id, err := parseID(chi.URLParam(r, "labID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid lab ID")
		return
	}
	if err := s.Labs.DeleteLab(actor, id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
