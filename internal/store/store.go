package store

import (
	"errors"

	"edulab-backend-go/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on a uniqueness violation.
	ErrConflict = errors.New("duplicate record")
)

// Store is the persistence handle injected into services at construction.
// Atomic runs fn against a transactional view of the store: every mutation
// made inside fn is committed together or rolled back together.
type Store interface {
	Atomic(fn func(Store) error) error

	CreateUser(usr *models.User) error
	UserByID(id int64) (models.User, error)
	UserByEmail(email string) (models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(usr models.User) error
	DeleteUser(id int64) error
	// UserReferenceCount counts labs created by and teacher assignments
	// held by the user. Deletion is blocked while it is non-zero.
	UserReferenceCount(userID int64) (int, error)

	CreateClassGroup(class *models.ClassGroup) error
	ClassGroupByID(id int64) (models.ClassGroup, error)
	ClassGroupByName(name string) (models.ClassGroup, error)
	ListClassGroups() ([]models.ClassGroup, error)
	UpdateClassGroup(class models.ClassGroup) error
	DeleteClassGroup(id int64) error

	CreateStudent(st models.Student) error
	UpdateStudentClass(userID, classID int64) error
	StudentByUserID(userID int64) (models.Student, error)
	StudentsByClass(classID int64) ([]models.Student, error)
	DeleteStudent(userID int64) error

	CreateSubject(sub *models.Subject) error
	SubjectByID(id int64) (models.Subject, error)
	SubjectByName(name string) (models.Subject, error)
	ListSubjects() ([]models.Subject, error)
	UpdateSubject(sub models.Subject) error
	DeleteSubject(id int64) error

	CreateClassSubject(link models.ClassSubject) error
	ClassSubjectExists(classID, subjectID int64) (bool, error)
	ClassSubjectsByClass(classID int64) ([]models.ClassSubject, error)
	DeleteClassSubject(classID, subjectID int64) error

	CreateAssignment(asg models.TeacherAssignment) error
	AssignmentForClassSubject(classID, subjectID int64) (models.TeacherAssignment, error)
	AssignmentsByClass(classID int64) ([]models.TeacherAssignment, error)
	AssignmentsByTeacher(teacherID int64) ([]models.TeacherAssignment, error)
	UpdateAssignmentTeacher(classID, subjectID, teacherID int64) error
	DeleteAssignmentsForClassSubject(classID, subjectID int64) error

	CreateLab(lab *models.Lab) error
	LabByID(id int64) (models.Lab, error)
	ListLabs(subjectID *int64) ([]models.Lab, error)
	UpdateLab(lab models.Lab) error
	DeleteLab(id int64) error

	CreateProgress(prg *models.StudentLabProgress) error
	ProgressByStudentLab(studentID, labID int64) (models.StudentLabProgress, error)
	ProgressByStudent(studentID int64) ([]models.StudentLabProgress, error)
	UpdateProgress(prg models.StudentLabProgress) error
	DeleteProgressByStudent(studentID int64) error
}
