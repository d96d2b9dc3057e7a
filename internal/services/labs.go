package services

import (
	"strings"
	"time"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

// LabService manages lab works and their approval lifecycle. A lab starts
// pending, an administrator approves or rejects it, and either decision can
// be reset back to pending for another review round.
type LabService struct {
	store store.Store
	now   func() time.Time
}

func NewLabService(st store.Store) *LabService {
	return &LabService{store: st, now: time.Now}
}

type LabInput struct {
	Name         string
	SubjectID    int64
	Description  *string
	Instructions *string
}

func (s *LabService) CreateLab(creator models.User, in LabInput) (models.Lab, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Lab{}, ErrBadRequest("Lab name is required")
	}
	if _, err := s.store.SubjectByID(in.SubjectID); err != nil {
		return models.Lab{}, storeErr(err, "Subject not found", "")
	}
	lab := models.Lab{
		Name:         in.Name,
		SubjectID:    in.SubjectID,
		CreatedBy:    creator.ID,
		Status:       models.LabPending,
		CreationDate: s.now().UTC(),
		Description:  in.Description,
		Instructions: in.Instructions,
	}
	if err := s.store.CreateLab(&lab); err != nil {
		return models.Lab{}, storeErr(err, "Subject not found", "Lab already exists")
	}
	return lab, nil
}

func (s *LabService) LabByID(id int64) (models.Lab, error) {
	lab, err := s.store.LabByID(id)
	if err != nil {
		return models.Lab{}, storeErr(err, "Lab not found", "")
	}
	return lab, nil
}

// ListLabs returns all labs, optionally restricted to one subject.
func (s *LabService) ListLabs(subjectID *int64) ([]models.Lab, error) {
	labs, err := s.store.ListLabs(subjectID)
	if err != nil {
		return nil, storeErr(err, "Lab not found", "")
	}
	return labs, nil
}

type LabUpdateInput struct {
	Name         *string
	SubjectID    *int64
	Description  *string
	Instructions *string
}

// UpdateLab edits lab content. Only the creator or an administrator may edit.
func (s *LabService) UpdateLab(actor models.User, id int64, in LabUpdateInput) (models.Lab, error) {
	lab, err := s.store.LabByID(id)
	if err != nil {
		return models.Lab{}, storeErr(err, "Lab not found", "")
	}
	if actor.ID != lab.CreatedBy && actor.Role != models.RoleAdministrator {
		return models.Lab{}, ErrForbidden("Only the creator or an administrator can edit this lab")
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return models.Lab{}, ErrBadRequest("Lab name is required")
		}
		lab.Name = trimmed
	}
	if in.SubjectID != nil {
		if _, err := s.store.SubjectByID(*in.SubjectID); err != nil {
			return models.Lab{}, storeErr(err, "Subject not found", "")
		}
		lab.SubjectID = *in.SubjectID
	}
	if in.Description != nil {
		lab.Description = in.Description
	}
	if in.Instructions != nil {
		lab.Instructions = in.Instructions
	}
	if err := s.store.UpdateLab(lab); err != nil {
		return models.Lab{}, storeErr(err, "Lab not found", "")
	}
	return lab, nil
}

// SetStatus drives the approval state machine. Valid transitions are
// pending->approved, pending->rejected, and approved|rejected->pending.
// Approving stamps approval_date; resetting to pending clears it. A rejected
// lab cannot jump straight to approved.
func (s *LabService) SetStatus(id int64, status string) (models.Lab, error) {
	if status != models.LabPending && status != models.LabApproved && status != models.LabRejected {
		return models.Lab{}, ErrBadRequest("Invalid status")
	}
	lab, err := s.store.LabByID(id)
	if err != nil {
		return models.Lab{}, storeErr(err, "Lab not found", "")
	}
	switch {
	case lab.Status == status:
		return models.Lab{}, ErrBadRequest("Lab is already " + status)
	case status == models.LabApproved && lab.Status != models.LabPending:
		return models.Lab{}, ErrBadRequest("Only a pending lab can be approved")
	case status == models.LabRejected && lab.Status != models.LabPending:
		return models.Lab{}, ErrBadRequest("Only a pending lab can be rejected")
	}
	lab.Status = status
	if status == models.LabApproved {
		now := s.now().UTC()
		lab.ApprovalDate = &now
	} else {
		lab.ApprovalDate = nil
	}
	if err := s.store.UpdateLab(lab); err != nil {
		return models.Lab{}, storeErr(err, "Lab not found", "")
	}
	return lab, nil
}

func (s *LabService) DeleteLab(actor models.User, id int64) error {
	lab, err := s.store.LabByID(id)
	if err != nil {
		return storeErr(err, "Lab not found", "")
	}
	if actor.ID != lab.CreatedBy && actor.Role != models.RoleAdministrator {
		return ErrForbidden("Only the creator or an administrator can delete this lab")
	}
	if err := s.store.DeleteLab(id); err != nil {
		return storeErr(err, "Lab not found", "Lab still has student progress records")
	}
	return nil
}
