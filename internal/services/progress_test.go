package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

func seedLabSetup(t *testing.T, mem *store.Memory) (models.User, models.User, models.Lab) {
	t.Helper()
	teacher := seedUser(t, mem, models.RoleTeacher)
	student := seedUser(t, mem, models.RoleStudent)
	class := seedClass(t, mem, "progress-"+student.Email)
	require.NoError(t, NewClassService(mem).AddStudent(class.ID, student.ID))
	subject := seedSubject(t, mem, "subject-"+student.Email)
	lab, err := NewLabService(mem).CreateLab(teacher, LabInput{Name: "Lab", SubjectID: subject.ID})
	require.NoError(t, err)
	return teacher, student, lab
}

func strPtr(s string) *string { return &s }

func TestProgressCreatedOnFirstUpdate(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	_, student, lab := seedLabSetup(t, mem)

	prg, err := svc.Update(student, student.ID, lab.ID, ProgressInput{})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressInProgress, prg.Status)
	require.NotNil(t, prg.StartDate)
	assert.Nil(t, prg.CompletionDate)
}

func TestProgressFirstOccurrenceTimestamps(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	_, student, lab := seedLabSetup(t, mem)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	prg, err := svc.Update(student, student.ID, lab.ID, ProgressInput{Status: strPtr(models.ProgressCompleted)})
	require.NoError(t, err)
	require.NotNil(t, prg.StartDate)
	require.NotNil(t, prg.CompletionDate)
	startedAt := *prg.StartDate
	completedAt := *prg.CompletionDate

	// a backward transition keeps both first-occurrence stamps
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	prg, err = svc.Update(student, student.ID, lab.ID, ProgressInput{Status: strPtr(models.ProgressInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressInProgress, prg.Status)
	require.NotNil(t, prg.StartDate)
	require.NotNil(t, prg.CompletionDate)
	assert.Equal(t, startedAt, *prg.StartDate)
	assert.Equal(t, completedAt, *prg.CompletionDate)

	// completing again does not move the original completion stamp
	prg, err = svc.Update(student, student.ID, lab.ID, ProgressInput{Status: strPtr(models.ProgressCompleted)})
	require.NoError(t, err)
	assert.Equal(t, completedAt, *prg.CompletionDate)
}

func TestStudentScoreIgnored(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	teacher, student, lab := seedLabSetup(t, mem)

	score := 90.0
	prg, err := svc.Update(student, student.ID, lab.ID, ProgressInput{Score: &score})
	require.NoError(t, err)
	assert.Nil(t, prg.Score)

	prg, err = svc.Update(teacher, student.ID, lab.ID, ProgressInput{Score: &score})
	require.NoError(t, err)
	require.NotNil(t, prg.Score)
	assert.Equal(t, 90.0, *prg.Score)
}

func TestScoreRangeValidated(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	teacher, student, lab := seedLabSetup(t, mem)

	score := 150.0
	_, err := svc.Update(teacher, student.ID, lab.ID, ProgressInput{Score: &score})
	requireStatus(t, err, 400)
}

func TestStudentCannotTouchOthersProgress(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	_, student, lab := seedLabSetup(t, mem)
	intruder := seedUser(t, mem, models.RoleStudent)

	_, err := svc.Update(intruder, student.ID, lab.ID, ProgressInput{})
	requireStatus(t, err, 403)

	_, err = svc.ForStudent(intruder, student.ID)
	requireStatus(t, err, 403)
}

func TestClassSummary(t *testing.T) {
	mem := store.NewMemory()
	svc := NewProgressService(mem)
	classes := NewClassService(mem)
	labs := NewLabService(mem)

	teacher := seedUser(t, mem, models.RoleTeacher)
	class := seedClass(t, mem, "summary")
	subject := seedSubject(t, mem, "Physics")

	labA, err := labs.CreateLab(teacher, LabInput{Name: "A", SubjectID: subject.ID})
	require.NoError(t, err)
	labB, err := labs.CreateLab(teacher, LabInput{Name: "B", SubjectID: subject.ID})
	require.NoError(t, err)

	student := seedUser(t, mem, models.RoleStudent)
	require.NoError(t, classes.AddStudent(class.ID, student.ID))

	score := 80.0
	_, err = svc.Update(teacher, student.ID, labA.ID, ProgressInput{Status: strPtr(models.ProgressCompleted), Score: &score})
	require.NoError(t, err)
	_, err = svc.Update(teacher, student.ID, labB.ID, ProgressInput{})
	require.NoError(t, err)

	summary, err := svc.ClassSummary(class.ID)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, student.ID, summary[0].StudentID)
	assert.Equal(t, 1, summary[0].Completed)
	assert.Equal(t, 1, summary[0].InProgress)
	require.NotNil(t, summary[0].AverageScore)
	assert.Equal(t, 80.0, *summary[0].AverageScore)
}
