package services

import (
	"errors"
	"strings"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

// ClassService keeps the class/subject/teacher-assignment/student graph
// consistent. Every mutation that touches more than one entity type runs
// inside a single store transaction: either all rows change or none do.
type ClassService struct {
	store store.Store
}

func NewClassService(st store.Store) *ClassService {
	return &ClassService{store: st}
}

func (s *ClassService) CreateClass(name string) (models.ClassGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ClassGroup{}, ErrBadRequest("Class name is required")
	}
	if _, err := s.store.ClassGroupByName(name); err == nil {
		return models.ClassGroup{}, ErrConflict("Class with this name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.ClassGroup{}, storeErr(err, "Class not found", "")
	}
	class := models.ClassGroup{Name: name}
	if err := s.store.CreateClassGroup(&class); err != nil {
		return models.ClassGroup{}, storeErr(err, "Class not found", "Class with this name already exists")
	}
	return class, nil
}

func (s *ClassService) UpdateClass(id int64, name string) (models.ClassGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ClassGroup{}, ErrBadRequest("Class name is required")
	}
	class, err := s.store.ClassGroupByID(id)
	if err != nil {
		return models.ClassGroup{}, storeErr(err, "Class not found", "")
	}
	class.Name = name
	if err := s.store.UpdateClassGroup(class); err != nil {
		return models.ClassGroup{}, storeErr(err, "Class not found", "Class with this name already exists")
	}
	return class, nil
}

func (s *ClassService) ClassByID(id int64) (models.ClassGroup, error) {
	class, err := s.store.ClassGroupByID(id)
	if err != nil {
		return models.ClassGroup{}, storeErr(err, "Class not found", "")
	}
	return class, nil
}

func (s *ClassService) ListClasses() ([]models.ClassGroup, error) {
	classes, err := s.store.ListClassGroups()
	if err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	return classes, nil
}

// DeleteClass decomposes the class aggregate in dependency order: student
// memberships, then per-link teacher assignments, then subject links, then
// the class row. A failure at any step rolls the whole sequence back.
func (s *ClassService) DeleteClass(id int64) error {
	if _, err := s.store.ClassGroupByID(id); err != nil {
		return storeErr(err, "Class not found", "")
	}
	err := s.store.Atomic(func(tx store.Store) error {
		students, err := tx.StudentsByClass(id)
		if err != nil {
			return err
		}
		for _, st := range students {
			if err := tx.DeleteStudent(st.UserID); err != nil {
				return err
			}
		}
		links, err := tx.ClassSubjectsByClass(id)
		if err != nil {
			return err
		}
		for _, link := range links {
			if err := tx.DeleteAssignmentsForClassSubject(link.ClassID, link.SubjectID); err != nil {
				return err
			}
			if err := tx.DeleteClassSubject(link.ClassID, link.SubjectID); err != nil {
				return err
			}
		}
		return tx.DeleteClassGroup(id)
	})
	if err != nil {
		return storeErr(err, "Class not found", "")
	}
	return nil
}

// AddStudent enrolls a user in a class, moving the membership when one
// already exists. Enrolling a student in the class they are already in is a
// conflict.
func (s *ClassService) AddStudent(classID, userID int64) error {
	if _, err := s.store.ClassGroupByID(classID); err != nil {
		return storeErr(err, "Class not found", "")
	}
	usr, err := s.store.UserByID(userID)
	if err != nil {
		return storeErr(err, "User not found", "")
	}
	if usr.Role != models.RoleStudent {
		return ErrBadRequest("User is not a student")
	}
	existing, err := s.store.StudentByUserID(userID)
	switch {
	case err == nil:
		if existing.ClassID == classID {
			return ErrConflict("Student already in this class")
		}
		if err := s.store.UpdateStudentClass(userID, classID); err != nil {
			return storeErr(err, "Student not found", "")
		}
		return nil
	case errors.Is(err, store.ErrNotFound):
		if err := s.store.CreateStudent(models.Student{UserID: userID, ClassID: classID}); err != nil {
			return storeErr(err, "Class not found", "Student already in this class")
		}
		return nil
	default:
		return storeErr(err, "Student not found", "")
	}
}

func (s *ClassService) RemoveStudent(classID, userID int64) error {
	st, err := s.store.StudentByUserID(userID)
	if err != nil || st.ClassID != classID {
		return ErrNotFound("Student not found in this class")
	}
	if err := s.store.DeleteStudent(userID); err != nil {
		return storeErr(err, "Student not found in this class", "")
	}
	return nil
}

func (s *ClassService) ClassStudents(classID int64) ([]models.Student, error) {
	if _, err := s.store.ClassGroupByID(classID); err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	students, err := s.store.StudentsByClass(classID)
	if err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	return students, nil
}

// LinkSubject attaches a subject to a class. When teacherID is supplied the
// teacher assignment is created in the same transaction, so a rejected
// teacher leaves no dangling link behind.
func (s *ClassService) LinkSubject(classID, subjectID int64, teacherID *int64) error {
	if _, err := s.store.ClassGroupByID(classID); err != nil {
		return storeErr(err, "Class not found", "")
	}
	if _, err := s.store.SubjectByID(subjectID); err != nil {
		return storeErr(err, "Subject not found", "")
	}
	exists, err := s.store.ClassSubjectExists(classID, subjectID)
	if err != nil {
		return storeErr(err, "Subject not found", "")
	}
	if exists {
		return ErrConflict("Subject already added to this class")
	}
	if teacherID != nil {
		teacher, err := s.store.UserByID(*teacherID)
		if err != nil || teacher.Role != models.RoleTeacher {
			return ErrBadRequest("Invalid teacher ID")
		}
	}
	err = s.store.Atomic(func(tx store.Store) error {
		if err := tx.CreateClassSubject(models.ClassSubject{ClassID: classID, SubjectID: subjectID}); err != nil {
			return err
		}
		if teacherID != nil {
			return tx.CreateAssignment(models.TeacherAssignment{
				ClassID:   classID,
				SubjectID: subjectID,
				TeacherID: *teacherID,
			})
		}
		return nil
	})
	if err != nil {
		return storeErr(err, "Subject not found", "Subject already added to this class")
	}
	return nil
}

// UnlinkSubject removes a subject from a class: assignments first, then the
// link itself, as one atomic unit.
func (s *ClassService) UnlinkSubject(classID, subjectID int64) error {
	exists, err := s.store.ClassSubjectExists(classID, subjectID)
	if err != nil {
		return storeErr(err, "Subject not found in this class", "")
	}
	if !exists {
		return ErrNotFound("Subject not found in this class")
	}
	err = s.store.Atomic(func(tx store.Store) error {
		if err := tx.DeleteAssignmentsForClassSubject(classID, subjectID); err != nil {
			return err
		}
		return tx.DeleteClassSubject(classID, subjectID)
	})
	if err != nil {
		return storeErr(err, "Subject not found in this class", "")
	}
	return nil
}

// AssignTeacher puts a teacher on an existing class-subject link. A second
// assignment for the same pair overwrites the first; there is never more
// than one teacher per class-subject.
func (s *ClassService) AssignTeacher(classID, subjectID, teacherID int64) error {
	teacher, err := s.store.UserByID(teacherID)
	if err != nil {
		return storeErr(err, "Teacher not found", "")
	}
	if teacher.Role != models.RoleTeacher {
		return ErrBadRequest("User is not a teacher")
	}
	exists, err := s.store.ClassSubjectExists(classID, subjectID)
	if err != nil {
		return storeErr(err, "Subject not found for this class", "")
	}
	if !exists {
		return ErrNotFound("Subject not found for this class")
	}
	_, err = s.store.AssignmentForClassSubject(classID, subjectID)
	switch {
	case err == nil:
		if err := s.store.UpdateAssignmentTeacher(classID, subjectID, teacherID); err != nil {
			return storeErr(err, "Subject not found for this class", "")
		}
		return nil
	case errors.Is(err, store.ErrNotFound):
		err := s.store.CreateAssignment(models.TeacherAssignment{
			ClassID:   classID,
			SubjectID: subjectID,
			TeacherID: teacherID,
		})
		if err != nil {
			return storeErr(err, "Subject not found for this class", "Teacher already assigned to this subject")
		}
		return nil
	default:
		return storeErr(err, "Subject not found for this class", "")
	}
}

// ClassSubjectInfo pairs a linked subject with its assigned teacher, if any.
type ClassSubjectInfo struct {
	Subject models.Subject
	Teacher *models.User
}

func (s *ClassService) ClassSubjects(classID int64) ([]ClassSubjectInfo, error) {
	if _, err := s.store.ClassGroupByID(classID); err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	links, err := s.store.ClassSubjectsByClass(classID)
	if err != nil {
		return nil, storeErr(err, "Class not found", "")
	}
	infos := make([]ClassSubjectInfo, 0, len(links))
	for _, link := range links {
		sub, err := s.store.SubjectByID(link.SubjectID)
		if err != nil {
			continue
		}
		info := ClassSubjectInfo{Subject: sub}
		if asg, err := s.store.AssignmentForClassSubject(link.ClassID, link.SubjectID); err == nil {
			if teacher, err := s.store.UserByID(asg.TeacherID); err == nil {
				info.Teacher = &teacher
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
