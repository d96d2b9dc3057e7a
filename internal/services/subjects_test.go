package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

func TestCreateSubjectDuplicateName(t *testing.T) {
	mem := store.NewMemory()
	svc := NewSubjectService(mem)

	_, err := svc.CreateSubject("Physics", nil)
	require.NoError(t, err)

	_, err = svc.CreateSubject("Physics", nil)
	requireStatus(t, err, 409)

	// trimming happens before the uniqueness check
	_, err = svc.CreateSubject("  Physics  ", nil)
	requireStatus(t, err, 409)
}

func TestDeleteSubjectLinkedToClassConflict(t *testing.T) {
	mem := store.NewMemory()
	subjects := NewSubjectService(mem)
	classes := NewClassService(mem)

	subject := seedSubject(t, mem, "Physics")
	class := seedClass(t, mem, "10A")
	require.NoError(t, classes.LinkSubject(class.ID, subject.ID, nil))

	err := subjects.DeleteSubject(subject.ID)
	requireStatus(t, err, 409)
	var svcErr ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Subject is still linked to a class", svcErr.Message)

	require.NoError(t, classes.UnlinkSubject(class.ID, subject.ID))
	require.NoError(t, subjects.DeleteSubject(subject.ID))
	_, err = mem.SubjectByID(subject.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteSubjectWithLabsConflict(t *testing.T) {
	mem := store.NewMemory()
	subjects := NewSubjectService(mem)
	labs := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Chemistry")
	lab, err := labs.CreateLab(teacher, LabInput{Name: "Titration", SubjectID: subject.ID})
	require.NoError(t, err)

	requireStatus(t, subjects.DeleteSubject(subject.ID), 409)

	require.NoError(t, labs.DeleteLab(teacher, lab.ID))
	require.NoError(t, subjects.DeleteSubject(subject.ID))
}
