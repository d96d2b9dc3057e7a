package httpapi

import (
	"encoding/json"
	"net/http"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ProfileResponse struct {
	UserDTO
	Class           *ClassDTO           `json:"class,omitempty"`
	AssignedClasses []TeacherClassEntry `json:"assignedClasses,omitempty"`
}

type TeacherClassEntry struct {
	Class   ClassDTO   `json:"class"`
	Subject SubjectDTO `json:"subject"`
}

// Profile returns the authenticated user with role-specific context: a
// student sees their class, a teacher sees the class-subject pairs they
// are assigned to.
func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	usr, _ := CurrentUser(r)
	resp := ProfileResponse{UserDTO: toUserDTO(usr)}
	switch usr.Role {
	case models.RoleStudent:
		if st, err := s.Store.StudentByUserID(usr.ID); err == nil {
			if class, err := s.Store.ClassGroupByID(st.ClassID); err == nil {
				dto := toClassDTO(class)
				resp.Class = &dto
			}
		}
	case models.RoleTeacher:
		assignments, err := s.Store.AssignmentsByTeacher(usr.ID)
		if err == nil {
			for _, asg := range assignments {
				class, cErr := s.Store.ClassGroupByID(asg.ClassID)
				subject, sErr := s.Store.SubjectByID(asg.SubjectID)
				if cErr != nil || sErr != nil {
					continue
				}
				resp.AssignedClasses = append(resp.AssignedClasses, TeacherClassEntry{
					Class:   toClassDTO(class),
					Subject: toSubjectDTO(subject),
				})
			}
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

type ProfileUpdateRequest struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Email           *string `json:"email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	usr, _ := CurrentUser(r)
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	updated, err := s.Accounts.UpdateProfile(usr, services.ProfileUpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(updated))
}

// GetUser serves a single account, visible to the account owner and to
// administrators.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r)
	id, err := parseID(chi.URLParam(r, "userID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if actor.ID != id && actor.Role != models.RoleAdministrator {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	usr, err := s.Accounts.UserByID(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(usr))
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Accounts.ListUsers()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]UserDTO, 0, len(users))
	for _, usr := range users {
		items = append(items, toUserDTO(usr))
	}
	WriteJSON(w, http.StatusOK, items)
}

type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	usr, err := s.Accounts.CreateUser(services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toUserDTO(usr))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "userID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if err := s.Accounts.DeleteUser(id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
