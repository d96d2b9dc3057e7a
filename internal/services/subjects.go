package services

import (
	"errors"
	"strings"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

// SubjectService is plain CRUD over the subject catalogue. Subject names are
// unique across the platform.
type SubjectService struct {
	store store.Store
}

func NewSubjectService(st store.Store) *SubjectService {
	return &SubjectService{store: st}
}

func (s *SubjectService) CreateSubject(name string, description *string) (models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Subject{}, ErrBadRequest("Subject name is required")
	}
	if _, err := s.store.SubjectByName(name); err == nil {
		return models.Subject{}, ErrConflict("Subject with this name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Subject{}, storeErr(err, "Subject not found", "")
	}
	sub := models.Subject{Name: name, Description: description}
	if err := s.store.CreateSubject(&sub); err != nil {
		return models.Subject{}, storeErr(err, "Subject not found", "Subject with this name already exists")
	}
	return sub, nil
}

func (s *SubjectService) UpdateSubject(id int64, name *string, description *string) (models.Subject, error) {
	sub, err := s.store.SubjectByID(id)
	if err != nil {
		return models.Subject{}, storeErr(err, "Subject not found", "")
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return models.Subject{}, ErrBadRequest("Subject name is required")
		}
		sub.Name = trimmed
	}
	if description != nil {
		sub.Description = description
	}
	if err := s.store.UpdateSubject(sub); err != nil {
		return models.Subject{}, storeErr(err, "Subject not found", "Subject with this name already exists")
	}
	return sub, nil
}

func (s *SubjectService) SubjectByID(id int64) (models.Subject, error) {
	sub, err := s.store.SubjectByID(id)
	if err != nil {
		return models.Subject{}, storeErr(err, "Subject not found", "")
	}
	return sub, nil
}

func (s *SubjectService) ListSubjects() ([]models.Subject, error) {
	subs, err := s.store.ListSubjects()
	if err != nil {
		return nil, storeErr(err, "Subject not found", "")
	}
	return subs, nil
}

func (s *SubjectService) DeleteSubject(id int64) error {
	if _, err := s.store.SubjectByID(id); err != nil {
		return storeErr(err, "Subject not found", "")
	}
	if err := s.store.DeleteSubject(id); err != nil {
		return storeErr(err, "Subject not found", "Subject is still linked to a class")
	}
	return nil
}
