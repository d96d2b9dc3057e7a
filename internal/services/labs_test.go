package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

func TestLabApprovalLifecycle(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Physics")

	lab, err := svc.CreateLab(teacher, LabInput{Name: "Pendulum", SubjectID: subject.ID})
	require.NoError(t, err)
	assert.Equal(t, models.LabPending, lab.Status)
	assert.Nil(t, lab.ApprovalDate)

	lab, err = svc.SetStatus(lab.ID, models.LabApproved)
	require.NoError(t, err)
	assert.Equal(t, models.LabApproved, lab.Status)
	require.NotNil(t, lab.ApprovalDate)

	// resetting to pending clears the approval stamp
	lab, err = svc.SetStatus(lab.ID, models.LabPending)
	require.NoError(t, err)
	assert.Equal(t, models.LabPending, lab.Status)
	assert.Nil(t, lab.ApprovalDate)
}

func TestRejectedLabCannotBeApproved(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Chemistry")
	lab, err := svc.CreateLab(teacher, LabInput{Name: "Titration", SubjectID: subject.ID})
	require.NoError(t, err)

	_, err = svc.SetStatus(lab.ID, models.LabRejected)
	require.NoError(t, err)

	_, err = svc.SetStatus(lab.ID, models.LabApproved)
	requireStatus(t, err, 400)

	// it has to pass through pending again
	_, err = svc.SetStatus(lab.ID, models.LabPending)
	require.NoError(t, err)
	lab, err = svc.SetStatus(lab.ID, models.LabApproved)
	require.NoError(t, err)
	assert.Equal(t, models.LabApproved, lab.Status)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Math")
	lab, err := svc.CreateLab(teacher, LabInput{Name: "Graphs", SubjectID: subject.ID})
	require.NoError(t, err)

	_, err = svc.SetStatus(lab.ID, "archived")
	requireStatus(t, err, 400)
}

func TestCreateLabRequiresSubject(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	_, err := svc.CreateLab(teacher, LabInput{Name: "Orphan", SubjectID: 999})
	requireStatus(t, err, 404)
}

func TestUpdateLabOnlyCreatorOrAdmin(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	creator := seedUser(t, mem, models.RoleTeacher)
	other := seedUser(t, mem, models.RoleTeacher)
	admin := seedUser(t, mem, models.RoleAdministrator)
	subject := seedSubject(t, mem, "Physics")

	lab, err := svc.CreateLab(creator, LabInput{Name: "Optics", SubjectID: subject.ID})
	require.NoError(t, err)

	name := "Optics II"
	_, err = svc.UpdateLab(other, lab.ID, LabUpdateInput{Name: &name})
	requireStatus(t, err, 403)

	updated, err := svc.UpdateLab(admin, lab.ID, LabUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Optics II", updated.Name)

	name = "Optics III"
	updated, err = svc.UpdateLab(creator, lab.ID, LabUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Optics III", updated.Name)
}

func TestListLabsFiltersBySubject(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	physics := seedSubject(t, mem, "Physics")
	chemistry := seedSubject(t, mem, "Chemistry")

	_, err := svc.CreateLab(teacher, LabInput{Name: "Pendulum", SubjectID: physics.ID})
	require.NoError(t, err)
	_, err = svc.CreateLab(teacher, LabInput{Name: "Optics", SubjectID: physics.ID})
	require.NoError(t, err)
	_, err = svc.CreateLab(teacher, LabInput{Name: "Titration", SubjectID: chemistry.ID})
	require.NoError(t, err)

	all, err := svc.ListLabs(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := svc.ListLabs(&physics.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestDeleteLabWithProgressConflict(t *testing.T) {
	mem := store.NewMemory()
	svc := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	subject := seedSubject(t, mem, "Physics")
	lab, err := svc.CreateLab(teacher, LabInput{Name: "Pendulum", SubjectID: subject.ID})
	require.NoError(t, err)

	student := seedUser(t, mem, models.RoleStudent)
	class := seedClass(t, mem, "10A")
	require.NoError(t, mem.CreateStudent(models.Student{UserID: student.ID, ClassID: class.ID}))
	require.NoError(t, mem.CreateProgress(&models.StudentLabProgress{
		StudentID: student.ID,
		LabID:     lab.ID,
		Status:    models.ProgressInProgress,
	}))

	err = svc.DeleteLab(teacher, lab.ID)
	requireStatus(t, err, 409)
	var svcErr ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Lab still has student progress records", svcErr.Message)

	require.NoError(t, mem.DeleteProgressByStudent(student.ID))
	require.NoError(t, svc.DeleteLab(teacher, lab.ID))
	_, err = mem.LabByID(lab.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
