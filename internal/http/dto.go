package httpapi

import (
	"time"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/services"
)

type UserDTO struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	RoleLabel   string     `json:"roleLabel"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func toUserDTO(usr models.User) UserDTO {
	return UserDTO{
		ID:          usr.ID,
		Email:       usr.Email,
		FirstName:   usr.FirstName,
		LastName:    usr.LastName,
		Role:        usr.Role,
		RoleLabel:   models.RoleLabel(usr.Role),
		CreatedAt:   usr.CreatedAt,
		LastLoginAt: usr.LastLoginAt,
	}
}

type ClassDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toClassDTO(class models.ClassGroup) ClassDTO {
	return ClassDTO{ID: class.ID, Name: class.Name, CreatedAt: class.CreatedAt}
}

type SubjectDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func toSubjectDTO(sub models.Subject) SubjectDTO {
	return SubjectDTO{ID: sub.ID, Name: sub.Name, Description: sub.Description}
}

type ClassSubjectDTO struct {
	Subject SubjectDTO `json:"subject"`
	Teacher *UserDTO   `json:"teacher"`
}

func toClassSubjectDTO(info services.ClassSubjectInfo) ClassSubjectDTO {
	dto := ClassSubjectDTO{Subject: toSubjectDTO(info.Subject)}
	if info.Teacher != nil {
		teacher := toUserDTO(*info.Teacher)
		dto.Teacher = &teacher
	}
	return dto
}

type LabDTO struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	SubjectID    int64      `json:"subjectId"`
	CreatedBy    int64      `json:"createdBy"`
	Status       string     `json:"status"`
	CreationDate time.Time  `json:"creationDate"`
	ApprovalDate *time.Time `json:"approvalDate"`
	Description  *string    `json:"description"`
	Instructions *string    `json:"instructions"`
}

func toLabDTO(lab models.Lab) LabDTO {
	return LabDTO{
		ID:           lab.ID,
		Name:         lab.Name,
		SubjectID:    lab.SubjectID,
		CreatedBy:    lab.CreatedBy,
		Status:       lab.Status,
		CreationDate: lab.CreationDate,
		ApprovalDate: lab.ApprovalDate,
		Description:  lab.Description,
		Instructions: lab.Instructions,
	}
}

type ProgressDTO struct {
	ID             int64      `json:"id"`
	StudentID      int64      `json:"studentId"`
	LabID          int64      `json:"labId"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"startDate"`
	CompletionDate *time.Time `json:"completionDate"`
	Score          *float64   `json:"score"`
	Comments       *string    `json:"comments"`
}

func toProgressDTO(prg models.StudentLabProgress) ProgressDTO {
	return ProgressDTO{
		ID:             prg.ID,
		StudentID:      prg.StudentID,
		LabID:          prg.LabID,
		Status:         prg.Status,
		StartDate:      prg.StartDate,
		CompletionDate: prg.CompletionDate,
		Score:          prg.Score,
		Comments:       prg.Comments,
	}
}
