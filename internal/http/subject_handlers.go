package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SubjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.Subjects.ListSubjects()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]SubjectDTO, 0, len(subjects))
	for _, sub := range subjects {
		items = append(items, toSubjectDTO(sub))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}
	sub, err := s.Subjects.SubjectByID(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSubjectDTO(sub))
}

func (s *Server) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	sub, err := s.Subjects.CreateSubject(req.Name, req.Description)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toSubjectDTO(sub))
}

func (s *Server) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}
	var req SubjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	sub, err := s.Subjects.UpdateSubject(id, req.Name, req.Description)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSubjectDTO(sub))
}

func (s *Server) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}
	if err := s.Subjects.DeleteSubject(id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
