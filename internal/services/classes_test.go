package services

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

var userSeq int64

func seedUser(t *testing.T, mem *store.Memory, role string) models.User {
	t.Helper()
	n := atomic.AddInt64(&userSeq, 1)
	usr := models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "irrelevant",
		Role:         role,
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", n),
	}
	require.NoError(t, mem.CreateUser(&usr))
	return usr
}

func seedClass(t *testing.T, mem *store.Memory, name string) models.ClassGroup {
	t.Helper()
	class := models.ClassGroup{Name: name}
	require.NoError(t, mem.CreateClassGroup(&class))
	return class
}

func seedSubject(t *testing.T, mem *store.Memory, name string) models.Subject {
	t.Helper()
	sub := models.Subject{Name: name}
	require.NoError(t, mem.CreateSubject(&sub))
	return sub
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var svcErr ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, status, svcErr.Status)
}

func TestDeleteClassCascade(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "10A")
	other := seedClass(t, mem, "10B")

	students := make([]models.User, 0, 3)
	for i := 0; i < 3; i++ {
		usr := seedUser(t, mem, models.RoleStudent)
		require.NoError(t, svc.AddStudent(class.ID, usr.ID))
		students = append(students, usr)
	}
	bystander := seedUser(t, mem, models.RoleStudent)
	require.NoError(t, svc.AddStudent(other.ID, bystander.ID))

	teacher := seedUser(t, mem, models.RoleTeacher)
	physics := seedSubject(t, mem, "Physics")
	chemistry := seedSubject(t, mem, "Chemistry")
	require.NoError(t, svc.LinkSubject(class.ID, physics.ID, &teacher.ID))
	require.NoError(t, svc.LinkSubject(class.ID, chemistry.ID, &teacher.ID))
	require.NoError(t, svc.LinkSubject(other.ID, physics.ID, nil))

	require.NoError(t, svc.DeleteClass(class.ID))

	_, err := mem.ClassGroupByID(class.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	for _, usr := range students {
		_, err := mem.StudentByUserID(usr.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		// the account itself survives; only the membership is removed
		_, err = mem.UserByID(usr.ID)
		assert.NoError(t, err)
	}
	links, err := mem.ClassSubjectsByClass(class.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	asgs, err := mem.AssignmentsByTeacher(teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, asgs)

	// the sibling class keeps its membership and link
	_, err = mem.StudentByUserID(bystander.ID)
	assert.NoError(t, err)
	otherLinks, err := mem.ClassSubjectsByClass(other.ID)
	require.NoError(t, err)
	assert.Len(t, otherLinks, 1)
}

func TestDeleteClassRollsBackOnFailure(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "11C")
	student := seedUser(t, mem, models.RoleStudent)
	require.NoError(t, svc.AddStudent(class.ID, student.ID))
	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Biology")
	require.NoError(t, svc.LinkSubject(class.ID, subject.ID, &teacher.ID))

	mem.FailNext = func(op string) error {
		if op == "DeleteClassGroup" {
			return errors.New("forced failure")
		}
		return nil
	}
	err := svc.DeleteClass(class.ID)
	mem.FailNext = nil
	require.Error(t, err)

	// everything the cascade touched before the failure is restored
	_, err = mem.ClassGroupByID(class.ID)
	assert.NoError(t, err)
	_, err = mem.StudentByUserID(student.ID)
	assert.NoError(t, err)
	links, err := mem.ClassSubjectsByClass(class.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)
	_, err = mem.AssignmentForClassSubject(class.ID, subject.ID)
	assert.NoError(t, err)
}

func TestLinkSubjectDuplicateConflict(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "9A")
	subject := seedSubject(t, mem, "Math")
	require.NoError(t, svc.LinkSubject(class.ID, subject.ID, nil))

	err := svc.LinkSubject(class.ID, subject.ID, nil)
	requireStatus(t, err, 409)

	links, lerr := mem.ClassSubjectsByClass(class.ID)
	require.NoError(t, lerr)
	assert.Len(t, links, 1)
}

func TestLinkSubjectRejectsNonTeacher(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "9B")
	subject := seedSubject(t, mem, "Math")
	student := seedUser(t, mem, models.RoleStudent)

	err := svc.LinkSubject(class.ID, subject.ID, &student.ID)
	requireStatus(t, err, 400)

	// the rejected teacher must not leave a half-created link behind
	exists, eerr := mem.ClassSubjectExists(class.ID, subject.ID)
	require.NoError(t, eerr)
	assert.False(t, exists)
}

func TestAssignTeacherUpsert(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "12A")
	subject := seedSubject(t, mem, "Physics")
	first := seedUser(t, mem, models.RoleTeacher)
	second := seedUser(t, mem, models.RoleTeacher)

	require.NoError(t, svc.LinkSubject(class.ID, subject.ID, nil))
	require.NoError(t, svc.AssignTeacher(class.ID, subject.ID, first.ID))
	require.NoError(t, svc.AssignTeacher(class.ID, subject.ID, second.ID))

	asg, err := mem.AssignmentForClassSubject(class.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, asg.TeacherID)

	asgs, err := mem.AssignmentsByClass(class.ID)
	require.NoError(t, err)
	assert.Len(t, asgs, 1)
}

func TestAssignTeacherRequiresLink(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "12B")
	subject := seedSubject(t, mem, "Physics")
	teacher := seedUser(t, mem, models.RoleTeacher)

	err := svc.AssignTeacher(class.ID, subject.ID, teacher.ID)
	requireStatus(t, err, 404)
}

func TestAddStudentMovesBetweenClasses(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	first := seedClass(t, mem, "8A")
	second := seedClass(t, mem, "8B")
	usr := seedUser(t, mem, models.RoleStudent)

	require.NoError(t, svc.AddStudent(first.ID, usr.ID))
	require.NoError(t, svc.AddStudent(second.ID, usr.ID))

	st, err := mem.StudentByUserID(usr.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, st.ClassID)

	firstStudents, err := mem.StudentsByClass(first.ID)
	require.NoError(t, err)
	assert.Empty(t, firstStudents)
}

func TestAddStudentSameClassConflict(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "8C")
	usr := seedUser(t, mem, models.RoleStudent)

	require.NoError(t, svc.AddStudent(class.ID, usr.ID))
	err := svc.AddStudent(class.ID, usr.ID)
	requireStatus(t, err, 409)
}

func TestAddStudentRejectsNonStudent(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "8D")
	teacher := seedUser(t, mem, models.RoleTeacher)

	err := svc.AddStudent(class.ID, teacher.ID)
	requireStatus(t, err, 400)
}

func TestUnlinkSubjectRemovesAssignment(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	class := seedClass(t, mem, "7A")
	subject := seedSubject(t, mem, "Chemistry")
	teacher := seedUser(t, mem, models.RoleTeacher)
	require.NoError(t, svc.LinkSubject(class.ID, subject.ID, &teacher.ID))

	require.NoError(t, svc.UnlinkSubject(class.ID, subject.ID))

	exists, err := mem.ClassSubjectExists(class.ID, subject.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = mem.AssignmentForClassSubject(class.ID, subject.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateClassDuplicateName(t *testing.T) {
	mem := store.NewMemory()
	svc := NewClassService(mem)

	_, err := svc.CreateClass("10A")
	require.NoError(t, err)
	_, err = svc.CreateClass("10A")
	requireStatus(t, err, 409)
}
