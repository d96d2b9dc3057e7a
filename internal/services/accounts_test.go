package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

func newAccounts(t *testing.T, mem *store.Memory) *AccountService {
	t.Helper()
	tokens, err := NewTokenService("test-secret", "edulab")
	require.NoError(t, err)
	return NewAccountService(mem, tokens)
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	usr, err := svc.Register(RegisterInput{
		Email:     "ana@example.com",
		Password:  "password123",
		FirstName: "Ana",
		LastName:  "Popescu",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, usr.Role)
	assert.NotEqual(t, "password123", usr.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	_, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "password123", FirstName: "A", LastName: "B"})
	requireStatus(t, err, 400)

	_, err = svc.Register(RegisterInput{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"})
	requireStatus(t, err, 400)

	_, err = svc.Register(RegisterInput{Email: "a@example.com", Password: "password123", FirstName: "A", LastName: "B", Role: "superuser"})
	requireStatus(t, err, 400)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	in := RegisterInput{Email: "dup@example.com", Password: "password123", FirstName: "A", LastName: "B"}
	_, err := svc.Register(in)
	require.NoError(t, err)
	_, err = svc.Register(in)
	requireStatus(t, err, 409)
}

func TestAuthenticate(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	_, err := svc.Register(RegisterInput{Email: "login@example.com", Password: "password123", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	usr, token, err := svc.Authenticate("login@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, usr.LastLoginAt)

	_, _, err = svc.Authenticate("login@example.com", "wrong-password")
	requireStatus(t, err, 401)

	_, _, err = svc.Authenticate("nobody@example.com", "password123")
	requireStatus(t, err, 401)
}

func TestDeleteUserBlockedWhileReferenced(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Physics")
	class := seedClass(t, mem, "ref")
	classes := NewClassService(mem)
	require.NoError(t, classes.LinkSubject(class.ID, subject.ID, &teacher.ID))

	err := svc.DeleteUser(teacher.ID)
	requireStatus(t, err, 409)

	// once the assignment is gone, deletion goes through
	require.NoError(t, classes.UnlinkSubject(class.ID, subject.ID))
	require.NoError(t, svc.DeleteUser(teacher.ID))
	_, err = mem.UserByID(teacher.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteLabCreatorBlocked(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Chemistry")
	_, err := NewLabService(mem).CreateLab(teacher, LabInput{Name: "Lab", SubjectID: subject.ID})
	require.NoError(t, err)

	err = svc.DeleteUser(teacher.ID)
	requireStatus(t, err, 409)
}

func TestDeleteStudentCascadesMembershipAndProgress(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	teacher, student, lab := seedLabSetup(t, mem)
	_, err := NewProgressService(mem).Update(teacher, student.ID, lab.ID, ProgressInput{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(student.ID))

	_, err = mem.UserByID(student.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.StudentByUserID(student.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	entries, err := mem.ProgressByStudent(student.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	mem := store.NewMemory()
	svc := newAccounts(t, mem)

	usr, err := svc.Register(RegisterInput{Email: "pw@example.com", Password: "password123", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	wrong := "bad-guess"
	next := "newpassword1"
	_, err = svc.UpdateProfile(usr, ProfileUpdateInput{CurrentPassword: &wrong, NewPassword: &next})
	requireStatus(t, err, 400)

	current := "password123"
	_, err = svc.UpdateProfile(usr, ProfileUpdateInput{CurrentPassword: &current, NewPassword: &next})
	require.NoError(t, err)

	_, _, err = svc.Authenticate("pw@example.com", "newpassword1")
	require.NoError(t, err)
}
