package services

import (
	"errors"
	"time"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

// ProgressService tracks each student's advancement through labs. Records
// are created lazily on the first update and the start/completion timestamps
// record the first occurrence only: reverting a status never rewinds them.
type ProgressService struct {
	store store.Store
	now   func() time.Time
}

func NewProgressService(st store.Store) *ProgressService {
	return &ProgressService{store: st, now: time.Now}
}

type ProgressInput struct {
	Status   *string
	Score    *float64
	Comments *string
}

func validProgressStatus(status string) bool {
	switch status {
	case models.ProgressNotStarted, models.ProgressInProgress, models.ProgressCompleted:
		return true
	}
	return false
}

// Update records progress for a student on a lab, creating the record when
// none exists yet. Students may only touch their own record and their score
// input is ignored; teachers and administrators may grade anyone.
func (s *ProgressService) Update(actor models.User, studentID, labID int64, in ProgressInput) (models.StudentLabProgress, error) {
	if actor.Role == models.RoleStudent && actor.ID != studentID {
		return models.StudentLabProgress{}, ErrForbidden("Students can only update their own progress")
	}
	if _, err := s.store.StudentByUserID(studentID); err != nil {
		return models.StudentLabProgress{}, storeErr(err, "Student not found", "")
	}
	if _, err := s.store.LabByID(labID); err != nil {
		return models.StudentLabProgress{}, storeErr(err, "Lab not found", "")
	}
	if in.Status != nil && !validProgressStatus(*in.Status) {
		return models.StudentLabProgress{}, ErrBadRequest("Invalid progress status")
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return models.StudentLabProgress{}, ErrBadRequest("Score must be between 0 and 100")
	}

	prg, err := s.store.ProgressByStudentLab(studentID, labID)
	created := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		created = true
		prg = models.StudentLabProgress{
			StudentID: studentID,
			LabID:     labID,
			Status:    models.ProgressInProgress,
		}
		now := s.now().UTC()
		prg.StartDate = &now
	case err != nil:
		return models.StudentLabProgress{}, storeErr(err, "Progress not found", "")
	}

	if in.Status != nil {
		prg.Status = *in.Status
		now := s.now().UTC()
		if prg.Status == models.ProgressInProgress && prg.StartDate == nil {
			prg.StartDate = &now
		}
		if prg.Status == models.ProgressCompleted && prg.CompletionDate == nil {
			prg.CompletionDate = &now
		}
	}
	if in.Score != nil && actor.Role != models.RoleStudent {
		prg.Score = in.Score
	}
	if in.Comments != nil {
		prg.Comments = in.Comments
	}

	if created {
		if err := s.store.CreateProgress(&prg); err != nil {
			return models.StudentLabProgress{}, storeErr(err, "Lab not found", "Progress already recorded")
		}
		return prg, nil
	}
	if err := s.store.UpdateProgress(prg); err != nil {
		return models.StudentLabProgress{}, storeErr(err, "Progress not found", "")
	}
	return prg, nil
}

// ForStudent lists a student's progress records. Students may only read
// their own.
func (s *ProgressService) ForStudent(actor models.User, studentID int64) ([]models.StudentLabProgress, error) {
	if actor.Role == models.RoleStudent && actor.ID != studentID {
		return nil, ErrForbidden("Students can only view their own progress")
	}
	if _, err := s.store.StudentByUserID(studentID); err != nil {
		return nil, storeErr(err, "Student not found", "")
	}
	entries, err := s.store.ProgressByStudent(studentID)
	if err != nil {
		return nil, storeErr(err, "Student not found", "")
	}
	return entries, nil
}

// StudentSummary aggregates one student's standing inside a class report.
type StudentSummary struct {
	StudentID    int64    `json:"student_id"`
	Completed    int      `json:"completed"`
	InProgress   int      `json:"in_progress"`
	AverageScore *float64 `json:"average_score"`
}

// ClassSummary reports per-student completion and grading across a class.
func (s *ProgressService) ClassSummary(classID int64) ([]StudentSummary, error) {
	students, err := s.store.StudentsByClass(classID)
	if err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	summaries := make([]StudentSummary, 0, len(students))
	for _, st := range students {
		entries, err := s.store.ProgressByStudent(st.UserID)
		if err != nil {
			return nil, storeErr(err, "Student not found", "")
		}
		sum := StudentSummary{StudentID: st.UserID}
		var total float64
		var graded int
		for _, e := range entries {
			switch e.Status {
			case models.ProgressCompleted:
				sum.Completed++
			case models.ProgressInProgress:
				sum.InProgress++
			}
			if e.Score != nil {
				total += *e.Score
				graded++
			}
		}
		if graded > 0 {
			avg := total / float64(graded)
			sum.AverageScore = &avg
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}
