package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ClassDetailResponse struct {
	ClassDTO
	Students []UserDTO         `json:"students"`
	Subjects []ClassSubjectDTO `json:"subjects"`
}

type ClassRequest struct {
	Name string `json:"name"`
}

type AddStudentRequest struct {
	UserID int64 `json:"userId"`
}

type LinkSubjectRequest struct {
	SubjectID int64  `json:"subjectId"`
	TeacherID *int64 `json:"teacherId"`
}

type AssignTeacherRequest struct {
	SubjectID int64 `json:"subjectId"`
	TeacherID int64 `json:"teacherId"`
}

func (s *Server) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.Classes.ListClasses()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]ClassDTO, 0, len(classes))
	for _, class := range classes {
		items = append(items, toClassDTO(class))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	class, err := s.Classes.ClassByID(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	resp := ClassDetailResponse{
		ClassDTO: toClassDTO(class),
		Students: []UserDTO{},
		Subjects: []ClassSubjectDTO{},
	}
	students, err := s.Classes.ClassStudents(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	for _, st := range students {
		if usr, err := s.Store.UserByID(st.UserID); err == nil {
			resp.Students = append(resp.Students, toUserDTO(usr))
		}
	}
	subjects, err := s.Classes.ClassSubjects(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	for _, info := range subjects {
		resp.Subjects = append(resp.Subjects, toClassSubjectDTO(info))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) ClassStudents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	students, err := s.Classes.ClassStudents(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]UserDTO, 0, len(students))
	for _, st := range students {
		if usr, err := s.Store.UserByID(st.UserID); err == nil {
			items = append(items, toUserDTO(usr))
		}
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) ClassSubjects(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	subjects, err := s.Classes.ClassSubjects(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]ClassSubjectDTO, 0, len(subjects))
	for _, info := range subjects {
		items = append(items, toClassSubjectDTO(info))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) ClassProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	if _, err := s.Classes.ClassByID(id); err != nil {
		WriteServiceError(w, err)
		return
	}
	summary, err := s.Progress.ClassSummary(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	class, err := s.Classes.CreateClass(req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toClassDTO(class))
}

func (s *Server) UpdateClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	var req ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	class, err := s.Classes.UpdateClass(id, req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toClassDTO(class))
}

func (s *Server) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	if err := s.Classes.DeleteClass(id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AddStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	var req AddStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Classes.AddStudent(id, req.UserID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	classID, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	userID, err := parseID(chi.URLParam(r, "userID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if err := s.Classes.RemoveStudent(classID, userID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) LinkSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	var req LinkSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Classes.LinkSubject(id, req.SubjectID, req.TeacherID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) UnlinkSubject(w http.ResponseWriter, r *http.Request) {
	classID, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	subjectID, err := parseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}
	if err := s.Classes.UnlinkSubject(classID, subjectID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AssignTeacher(w http.ResponseWriter, r *http.Request) {
	classID, err := parseID(chi.URLParam(r, "classID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid class ID")
		return
	}
	var req AssignTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Classes.AssignTeacher(classID, req.SubjectID, req.TeacherID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
