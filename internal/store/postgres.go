package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"edulab-backend-go/internal/models"
)

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// Postgres implements Store over sqlx. Atomic hands the closure a view
// bound to a single transaction; nested calls reuse the open transaction.
type Postgres struct {
	db *sqlx.DB
	q  sqlx.Ext
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, q: db}
}

func (p *Postgres) Atomic(fn func(Store) error) error {
	if _, ok := p.q.(*sqlx.Tx); ok {
		return fn(p)
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return err
	}
	if err := fn(&Postgres{db: p.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func wrapPgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgFKViolation:
			return ErrConflict
		}
	}
	return err
}

// users

func (p *Postgres) CreateUser(usr *models.User) error {
	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now
	err := sqlx.Get(p.q, &usr.ID, `
INSERT INTO users (email, password_hash, role, first_name, last_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING id
`, usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName, now)
	return wrapPgErr(err)
}

func (p *Postgres) UserByID(id int64) (models.User, error) {
	var usr models.User
	err := sqlx.Get(p.q, &usr, `SELECT * FROM users WHERE id = $1`, id)
	return usr, wrapPgErr(err)
}

func (p *Postgres) UserByEmail(email string) (models.User, error) {
	var usr models.User
	err := sqlx.Get(p.q, &usr, `SELECT * FROM users WHERE email = $1`, email)
	return usr, wrapPgErr(err)
}

func (p *Postgres) ListUsers() ([]models.User, error) {
	users := []models.User{}
	err := sqlx.Select(p.q, &users, `SELECT * FROM users ORDER BY id`)
	return users, wrapPgErr(err)
}

func (p *Postgres) UpdateUser(usr models.User) error {
	_, err := p.q.Exec(`
UPDATE users
SET email = $2, password_hash = $3, role = $4, first_name = $5, last_name = $6,
    updated_at = $7, last_login_at = $8
WHERE id = $1
`, usr.ID, usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName, time.Now().UTC(), usr.LastLoginAt)
	return wrapPgErr(err)
}

func (p *Postgres) DeleteUser(id int64) error {
	_, err := p.q.Exec(`DELETE FROM users WHERE id = $1`, id)
	return wrapPgErr(err)
}

func (p *Postgres) UserReferenceCount(userID int64) (int, error) {
	var total int
	err := sqlx.Get(p.q, &total, `
SELECT (SELECT count(*) FROM labs WHERE created_by = $1)
     + (SELECT count(*) FROM teacher_assignments WHERE teacher_id = $1)
`, userID)
	return total, wrapPgErr(err)
}

// class groups

func (p *Postgres) CreateClassGroup(class *models.ClassGroup) error {
	class.CreatedAt = time.Now().UTC()
	err := sqlx.Get(p.q, &class.ID, `
INSERT INTO class_groups (name, created_at) VALUES ($1,$2) RETURNING id
`, class.Name, class.CreatedAt)
	return wrapPgErr(err)
}

func (p *Postgres) ClassGroupByID(id int64) (models.ClassGroup, error) {
	var class models.ClassGroup
	err := sqlx.Get(p.q, &class, `SELECT * FROM class_groups WHERE id = $1`, id)
	return class, wrapPgErr(err)
}

func (p *Postgres) ClassGroupByName(name string) (models.ClassGroup, error) {
	var class models.ClassGroup
	err := sqlx.Get(p.q, &class, `SELECT * FROM class_groups WHERE name = $1`, name)
	return class, wrapPgErr(err)
}

func (p *Postgres) ListClassGroups() ([]models.ClassGroup, error) {
	classes := []models.ClassGroup{}
	err := sqlx.Select(p.q, &classes, `SELECT * FROM class_groups ORDER BY id`)
	return classes, wrapPgErr(err)
}

func (p *Postgres) UpdateClassGroup(class models.ClassGroup) error {
	_, err := p.q.Exec(`UPDATE class_groups SET name = $2 WHERE id = $1`, class.ID, class.Name)
	return wrapPgErr(err)
}

func (p *Postgres) DeleteClassGroup(id int64) error {
	_, err := p.q.Exec(`DELETE FROM class_groups WHERE id = $1`, id)
	return wrapPgErr(err)
}

// students

func (p *Postgres) CreateStudent(st models.Student) error {
	_, err := p.q.Exec(`INSERT INTO students (user_id, class_id) VALUES ($1,$2)`, st.UserID, st.ClassID)
	return wrapPgErr(err)
}

func (p *Postgres) UpdateStudentClass(userID, classID int64) error {
	_, err := p.q.Exec(`UPDATE students SET class_id = $2 WHERE user_id = $1`, userID, classID)
	return wrapPgErr(err)
}

func (p *Postgres) StudentByUserID(userID int64) (models.Student, error) {
	var st models.Student
	err := sqlx.Get(p.q, &st, `SELECT * FROM students WHERE user_id = $1`, userID)
	return st, wrapPgErr(err)
}

func (p *Postgres) StudentsByClass(classID int64) ([]models.Student, error) {
	students := []models.Student{}
	err := sqlx.Select(p.q, &students, `SELECT * FROM students WHERE class_id = $1 ORDER BY user_id`, classID)
	return students, wrapPgErr(err)
}

func (p *Postgres) DeleteStudent(userID int64) error {
	_, err := p.q.Exec(`DELETE FROM students WHERE user_id = $1`, userID)
	return wrapPgErr(err)
}

// subjects

func (p *Postgres) CreateSubject(sub *models.Subject) error {
	sub.CreatedAt = time.Now().UTC()
	err := sqlx.Get(p.q, &sub.ID, `
INSERT INTO subjects (name, description, created_at) VALUES ($1,$2,$3) RETURNING id
`, sub.Name, sub.Description, sub.CreatedAt)
	return wrapPgErr(err)
}

func (p *Postgres) SubjectByID(id int64) (models.Subject, error) {
	var sub models.Subject
	err := sqlx.Get(p.q, &sub, `SELECT * FROM subjects WHERE id = $1`, id)
	return sub, wrapPgErr(err)
}

func (p *Postgres) SubjectByName(name string) (models.Subject, error) {
	var sub models.Subject
	err := sqlx.Get(p.q, &sub, `SELECT * FROM subjects WHERE name = $1`, name)
	return sub, wrapPgErr(err)
}

func (p *Postgres) ListSubjects() ([]models.Subject, error) {
	subjects := []models.Subject{}
	err := sqlx.Select(p.q, &subjects, `SELECT * FROM subjects ORDER BY id`)
	return subjects, wrapPgErr(err)
}

func (p *Postgres) UpdateSubject(sub models.Subject) error {
	_, err := p.q.Exec(`UPDATE subjects SET name = $2, description = $3 WHERE id = $1`, sub.ID, sub.Name, sub.Description)
	return wrapPgErr(err)
}

func (p *Postgres) DeleteSubject(id int64) error {
	_, err := p.q.Exec(`DELETE FROM subjects WHERE id = $1`, id)
	return wrapPgErr(err)
}

// class-subject links

func (p *Postgres) CreateClassSubject(link models.ClassSubject) error {
	_, err := p.q.Exec(`INSERT INTO class_subjects (class_id, subject_id) VALUES ($1,$2)`, link.ClassID, link.SubjectID)
	return wrapPgErr(err)
}

func (p *Postgres) ClassSubjectExists(classID, subjectID int64) (bool, error) {
	var exists bool
	err := sqlx.Get(p.q, &exists, `
SELECT EXISTS(SELECT 1 FROM class_subjects WHERE class_id = $1 AND subject_id = $2)
`, classID, subjectID)
	return exists, wrapPgErr(err)
}

func (p *Postgres) ClassSubjectsByClass(classID int64) ([]models.ClassSubject, error) {
	links := []models.ClassSubject{}
	err := sqlx.Select(p.q, &links, `SELECT * FROM class_subjects WHERE class_id = $1 ORDER BY subject_id`, classID)
	return links, wrapPgErr(err)
}

func (p *Postgres) DeleteClassSubject(classID, subjectID int64) error {
	_, err := p.q.Exec(`DELETE FROM class_subjects WHERE class_id = $1 AND subject_id = $2`, classID, subjectID)
	return wrapPgErr(err)
}

// teacher assignments

func (p *Postgres) CreateAssignment(asg models.TeacherAssignment) error {
	_, err := p.q.Exec(`
INSERT INTO teacher_assignments (class_id, subject_id, teacher_id) VALUES ($1,$2,$3)
`, asg.ClassID, asg.SubjectID, asg.TeacherID)
	return wrapPgErr(err)
}

func (p *Postgres) AssignmentForClassSubject(classID, subjectID int64) (models.TeacherAssignment, error) {
	var asg models.TeacherAssignment
	err := sqlx.Get(p.q, &asg, `
SELECT * FROM teacher_assignments WHERE class_id = $1 AND subject_id = $2
`, classID, subjectID)
	return asg, wrapPgErr(err)
}

func (p *Postgres) AssignmentsByClass(classID int64) ([]models.TeacherAssignment, error) {
	asgs := []models.TeacherAssignment{}
	err := sqlx.Select(p.q, &asgs, `SELECT * FROM teacher_assignments WHERE class_id = $1 ORDER BY subject_id`, classID)
	return asgs, wrapPgErr(err)
}

func (p *Postgres) AssignmentsByTeacher(teacherID int64) ([]models.TeacherAssignment, error) {
	asgs := []models.TeacherAssignment{}
	err := sqlx.Select(p.q, &asgs, `
SELECT * FROM teacher_assignments WHERE teacher_id = $1 ORDER BY class_id, subject_id
`, teacherID)
	return asgs, wrapPgErr(err)
}

func (p *Postgres) UpdateAssignmentTeacher(classID, subjectID, teacherID int64) error {
	_, err := p.q.Exec(`
UPDATE teacher_assignments SET teacher_id = $3 WHERE class_id = $1 AND subject_id = $2
`, classID, subjectID, teacherID)
	return wrapPgErr(err)
}

func (p *Postgres) DeleteAssignmentsForClassSubject(classID, subjectID int64) error {
	_, err := p.q.Exec(`DELETE FROM teacher_assignments WHERE class_id = $1 AND subject_id = $2`, classID, subjectID)
	return wrapPgErr(err)
}

// labs

func (p *Postgres) CreateLab(lab *models.Lab) error {
	err := sqlx.Get(p.q, &lab.ID, `
INSERT INTO labs (name, subject_id, created_by, status, creation_date, approval_date, description, instructions)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`, lab.Name, lab.SubjectID, lab.CreatedBy, lab.Status, lab.CreationDate, lab.ApprovalDate, lab.Description, lab.Instructions)
	return wrapPgErr(err)
}

func (p *Postgres) LabByID(id int64) (models.Lab, error) {
	var lab models.Lab
	err := sqlx.Get(p.q, &lab, `SELECT * FROM labs WHERE id = $1`, id)
	return lab, wrapPgErr(err)
}

func (p *Postgres) ListLabs(subjectID *int64) ([]models.Lab, error) {
	labs := []models.Lab{}
	if subjectID != nil {
		err := sqlx.Select(p.q, &labs, `SELECT * FROM labs WHERE subject_id = $1 ORDER BY id`, *subjectID)
		return labs, wrapPgErr(err)
	}
	err := sqlx.Select(p.q, &labs, `SELECT * FROM labs ORDER BY id`)
	return labs, wrapPgErr(err)
}

func (p *Postgres) UpdateLab(lab models.Lab) error {
	_, err := p.q.Exec(`
UPDATE labs
SET name = $2, subject_id = $3, status = $4, approval_date = $5, description = $6, instructions = $7
WHERE id = $1
`, lab.ID, lab.Name, lab.SubjectID, lab.Status, lab.ApprovalDate, lab.Description, lab.Instructions)
	return wrapPgErr(err)
}

func (p *Postgres) DeleteLab(id int64) error {
	_, err := p.q.Exec(`DELETE FROM labs WHERE id = $1`, id)
	return wrapPgErr(err)
}

// progress

func (p *Postgres) CreateProgress(prg *models.StudentLabProgress) error {
	err := sqlx.Get(p.q, &prg.ID, `
INSERT INTO student_lab_progress (student_id, lab_id, status, start_date, completion_date, score, comments)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, prg.StudentID, prg.LabID, prg.Status, prg.StartDate, prg.CompletionDate, prg.Score, prg.Comments)
	return wrapPgErr(err)
}

func (p *Postgres) ProgressByStudentLab(studentID, labID int64) (models.StudentLabProgress, error) {
	var prg models.StudentLabProgress
	err := sqlx.Get(p.q, &prg, `
SELECT * FROM student_lab_progress WHERE student_id = $1 AND lab_id = $2
`, studentID, labID)
	return prg, wrapPgErr(err)
}

func (p *Postgres) ProgressByStudent(studentID int64) ([]models.StudentLabProgress, error) {
	entries := []models.StudentLabProgress{}
	err := sqlx.Select(p.q, &entries, `
SELECT * FROM student_lab_progress WHERE student_id = $1 ORDER BY lab_id
`, studentID)
	return entries, wrapPgErr(err)
}

func (p *Postgres) DeleteProgressByStudent(studentID int64) error {
	_, err := p.q.Exec(`DELETE FROM student_lab_progress WHERE student_id = $1`, studentID)
	return wrapPgErr(err)
}

func (p *Postgres) UpdateProgress(prg models.StudentLabProgress) error {
	_, err := p.q.Exec(`
UPDATE student_lab_progress
SET status = $2, start_date = $3, completion_date = $4, score = $5, comments = $6
WHERE id = $1
`, prg.ID, prg.Status, prg.StartDate, prg.CompletionDate, prg.Score, prg.Comments)
	return wrapPgErr(err)
}
