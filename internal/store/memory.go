package store

import (
	"sort"
	"sync"
	"time"

	"edulab-backend-go/internal/models"
)

type pair struct {
	a, b int64
}

type memState struct {
	users       map[int64]models.User
	classes     map[int64]models.ClassGroup
	students    map[int64]models.Student
	subjects    map[int64]models.Subject
	links       map[pair]models.ClassSubject
	assignments map[pair]models.TeacherAssignment
	labs        map[int64]models.Lab
	progress    map[int64]models.StudentLabProgress
	nextID      int64
}

// Memory is a mutex-guarded in-memory Store used by tests. Atomic snapshots
// the whole state up front and restores it when the closure fails, so the
// rollback semantics of the Postgres implementation hold here too.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	s    memState

	// FailNext, when non-nil, is consulted before every mutation with the
	// operation name; a non-nil result aborts the operation. Tests use it
	// to force mid-transaction failures.
	FailNext func(op string) error
}

func NewMemory() *Memory {
	return &Memory{s: memState{
		users:       map[int64]models.User{},
		classes:     map[int64]models.ClassGroup{},
		students:    map[int64]models.Student{},
		subjects:    map[int64]models.Subject{},
		links:       map[pair]models.ClassSubject{},
		assignments: map[pair]models.TeacherAssignment{},
		labs:        map[int64]models.Lab{},
		progress:    map[int64]models.StudentLabProgress{},
	}}
}

func (m *Memory) Atomic(fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.s.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.s = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (s memState) clone() memState {
	out := memState{
		users:       make(map[int64]models.User, len(s.users)),
		classes:     make(map[int64]models.ClassGroup, len(s.classes)),
		students:    make(map[int64]models.Student, len(s.students)),
		subjects:    make(map[int64]models.Subject, len(s.subjects)),
		links:       make(map[pair]models.ClassSubject, len(s.links)),
		assignments: make(map[pair]models.TeacherAssignment, len(s.assignments)),
		labs:        make(map[int64]models.Lab, len(s.labs)),
		progress:    make(map[int64]models.StudentLabProgress, len(s.progress)),
		nextID:      s.nextID,
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.classes {
		out.classes[k] = v
	}
	for k, v := range s.students {
		out.students[k] = v
	}
	for k, v := range s.subjects {
		out.subjects[k] = v
	}
	for k, v := range s.links {
		out.links[k] = v
	}
	for k, v := range s.assignments {
		out.assignments[k] = v
	}
	for k, v := range s.labs {
		out.labs[k] = v
	}
	for k, v := range s.progress {
		out.progress[k] = v
	}
	return out
}

func (m *Memory) fail(op string) error {
	if m.FailNext != nil {
		return m.FailNext(op)
	}
	return nil
}

func (m *Memory) id() int64 {
	m.s.nextID++
	return m.s.nextID
}

// users

func (m *Memory) CreateUser(usr *models.User) error {
	if err := m.fail("CreateUser"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.s.users {
		if existing.Email == usr.Email {
			return ErrConflict
		}
	}
	now := time.Now().UTC()
	usr.ID = m.id()
	usr.CreatedAt = now
	usr.UpdatedAt = now
	m.s.users[usr.ID] = *usr
	return nil
}

func (m *Memory) UserByID(id int64) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if usr, ok := m.s.users[id]; ok {
		return usr, nil
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) UserByEmail(email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, usr := range m.s.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) ListUsers() ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(m.s.users))
	for _, usr := range m.s.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) UpdateUser(usr models.User) error {
	if err := m.fail("UpdateUser"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.users[usr.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.s.users {
		if existing.Email == usr.Email && existing.ID != usr.ID {
			return ErrConflict
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	m.s.users[usr.ID] = usr
	return nil
}

func (m *Memory) DeleteUser(id int64) error {
	if err := m.fail("DeleteUser"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.users, id)
	return nil
}

func (m *Memory) UserReferenceCount(userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, lab := range m.s.labs {
		if lab.CreatedBy == userID {
			total++
		}
	}
	for _, asg := range m.s.assignments {
		if asg.TeacherID == userID {
			total++
		}
	}
	return total, nil
}

// class groups

func (m *Memory) CreateClassGroup(class *models.ClassGroup) error {
	if err := m.fail("CreateClassGroup"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.s.classes {
		if existing.Name == class.Name {
			return ErrConflict
		}
	}
	class.ID = m.id()
	class.CreatedAt = time.Now().UTC()
	m.s.classes[class.ID] = *class
	return nil
}

func (m *Memory) ClassGroupByID(id int64) (models.ClassGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if class, ok := m.s.classes[id]; ok {
		return class, nil
	}
	return models.ClassGroup{}, ErrNotFound
}

func (m *Memory) ClassGroupByName(name string) (models.ClassGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, class := range m.s.classes {
		if class.Name == name {
			return class, nil
		}
	}
	return models.ClassGroup{}, ErrNotFound
}

func (m *Memory) ListClassGroups() ([]models.ClassGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	classes := make([]models.ClassGroup, 0, len(m.s.classes))
	for _, class := range m.s.classes {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (m *Memory) UpdateClassGroup(class models.ClassGroup) error {
	if err := m.fail("UpdateClassGroup"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.s.classes[class.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range m.s.classes {
		if other.Name == class.Name && other.ID != class.ID {
			return ErrConflict
		}
	}
	existing.Name = class.Name
	m.s.classes[class.ID] = existing
	return nil
}

func (m *Memory) DeleteClassGroup(id int64) error {
	if err := m.fail("DeleteClassGroup"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.classes, id)
	return nil
}

// students

func (m *Memory) CreateStudent(st models.Student) error {
	if err := m.fail("CreateStudent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.students[st.UserID]; ok {
		return ErrConflict
	}
	m.s.students[st.UserID] = st
	return nil
}

func (m *Memory) UpdateStudentClass(userID, classID int64) error {
	if err := m.fail("UpdateStudentClass"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.s.students[userID]
	if !ok {
		return ErrNotFound
	}
	st.ClassID = classID
	m.s.students[userID] = st
	return nil
}

func (m *Memory) StudentByUserID(userID int64) (models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.s.students[userID]; ok {
		return st, nil
	}
	return models.Student{}, ErrNotFound
}

func (m *Memory) StudentsByClass(classID int64) ([]models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	students := []models.Student{}
	for _, st := range m.s.students {
		if st.ClassID == classID {
			students = append(students, st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].UserID < students[j].UserID })
	return students, nil
}

func (m *Memory) DeleteStudent(userID int64) error {
	if err := m.fail("DeleteStudent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.students, userID)
	return nil
}

// subjects

func (m *Memory) CreateSubject(sub *models.Subject) error {
	if err := m.fail("CreateSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.s.subjects {
		if existing.Name == sub.Name {
			return ErrConflict
		}
	}
	sub.ID = m.id()
	sub.CreatedAt = time.Now().UTC()
	m.s.subjects[sub.ID] = *sub
	return nil
}

func (m *Memory) SubjectByID(id int64) (models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub, ok := m.s.subjects[id]; ok {
		return sub, nil
	}
	return models.Subject{}, ErrNotFound
}

func (m *Memory) SubjectByName(name string) (models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.s.subjects {
		if sub.Name == name {
			return sub, nil
		}
	}
	return models.Subject{}, ErrNotFound
}

func (m *Memory) ListSubjects() ([]models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subjects := make([]models.Subject, 0, len(m.s.subjects))
	for _, sub := range m.s.subjects {
		subjects = append(subjects, sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (m *Memory) UpdateSubject(sub models.Subject) error {
	if err := m.fail("UpdateSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.s.subjects[sub.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range m.s.subjects {
		if other.Name == sub.Name && other.ID != sub.ID {
			return ErrConflict
		}
	}
	existing.Name = sub.Name
	existing.Description = sub.Description
	m.s.subjects[sub.ID] = existing
	return nil
}

func (m *Memory) DeleteSubject(id int64) error {
	if err := m.fail("DeleteSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.s.links {
		if key.b == id {
			return ErrConflict
		}
	}
	for _, lab := range m.s.labs {
		if lab.SubjectID == id {
			return ErrConflict
		}
	}
	delete(m.s.subjects, id)
	return nil
}

// class-subject links

func (m *Memory) CreateClassSubject(link models.ClassSubject) error {
	if err := m.fail("CreateClassSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{link.ClassID, link.SubjectID}
	if _, ok := m.s.links[key]; ok {
		return ErrConflict
	}
	m.s.links[key] = link
	return nil
}

func (m *Memory) ClassSubjectExists(classID, subjectID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.s.links[pair{classID, subjectID}]
	return ok, nil
}

func (m *Memory) ClassSubjectsByClass(classID int64) ([]models.ClassSubject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links := []models.ClassSubject{}
	for _, link := range m.s.links {
		if link.ClassID == classID {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].SubjectID < links[j].SubjectID })
	return links, nil
}

func (m *Memory) DeleteClassSubject(classID, subjectID int64) error {
	if err := m.fail("DeleteClassSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.links, pair{classID, subjectID})
	return nil
}

// teacher assignments

func (m *Memory) CreateAssignment(asg models.TeacherAssignment) error {
	if err := m.fail("CreateAssignment"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{asg.ClassID, asg.SubjectID}
	if _, ok := m.s.assignments[key]; ok {
		return ErrConflict
	}
	m.s.assignments[key] = asg
	return nil
}

func (m *Memory) AssignmentForClassSubject(classID, subjectID int64) (models.TeacherAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if asg, ok := m.s.assignments[pair{classID, subjectID}]; ok {
		return asg, nil
	}
	return models.TeacherAssignment{}, ErrNotFound
}

func (m *Memory) AssignmentsByClass(classID int64) ([]models.TeacherAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	asgs := []models.TeacherAssignment{}
	for _, asg := range m.s.assignments {
		if asg.ClassID == classID {
			asgs = append(asgs, asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].SubjectID < asgs[j].SubjectID })
	return asgs, nil
}

func (m *Memory) AssignmentsByTeacher(teacherID int64) ([]models.TeacherAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	asgs := []models.TeacherAssignment{}
	for _, asg := range m.s.assignments {
		if asg.TeacherID == teacherID {
			asgs = append(asgs, asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool {
		if asgs[i].ClassID != asgs[j].ClassID {
			return asgs[i].ClassID < asgs[j].ClassID
		}
		return asgs[i].SubjectID < asgs[j].SubjectID
	})
	return asgs, nil
}

func (m *Memory) UpdateAssignmentTeacher(classID, subjectID, teacherID int64) error {
	if err := m.fail("UpdateAssignmentTeacher"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{classID, subjectID}
	asg, ok := m.s.assignments[key]
	if !ok {
		return ErrNotFound
	}
	asg.TeacherID = teacherID
	m.s.assignments[key] = asg
	return nil
}

func (m *Memory) DeleteAssignmentsForClassSubject(classID, subjectID int64) error {
	if err := m.fail("DeleteAssignmentsForClassSubject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.s.assignments, pair{classID, subjectID})
	return nil
}

// labs

func (m *Memory) CreateLab(lab *models.Lab) error {
	if err := m.fail("CreateLab"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lab.ID = m.id()
	m.s.labs[lab.ID] = *lab
	return nil
}

func (m *Memory) LabByID(id int64) (models.Lab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if lab, ok := m.s.labs[id]; ok {
		return lab, nil
	}
	return models.Lab{}, ErrNotFound
}

func (m *Memory) ListLabs(subjectID *int64) ([]models.Lab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	labs := []models.Lab{}
	for _, lab := range m.s.labs {
		if subjectID == nil || lab.SubjectID == *subjectID {
			labs = append(labs, lab)
		}
	}
	sort.Slice(labs, func(i, j int) bool { return labs[i].ID < labs[j].ID })
	return labs, nil
}

func (m *Memory) UpdateLab(lab models.Lab) error {
	if err := m.fail("UpdateLab"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.labs[lab.ID]; !ok {
		return ErrNotFound
	}
	m.s.labs[lab.ID] = lab
	return nil
}

func (m *Memory) DeleteLab(id int64) error {
	if err := m.fail("DeleteLab"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, prg := range m.s.progress {
		if prg.LabID == id {
			return ErrConflict
		}
	}
	delete(m.s.labs, id)
	return nil
}

// progress

func (m *Memory) CreateProgress(prg *models.StudentLabProgress) error {
	if err := m.fail("CreateProgress"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.s.progress {
		if existing.StudentID == prg.StudentID && existing.LabID == prg.LabID {
			return ErrConflict
		}
	}
	prg.ID = m.id()
	m.s.progress[prg.ID] = *prg
	return nil
}

func (m *Memory) ProgressByStudentLab(studentID, labID int64) (models.StudentLabProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, prg := range m.s.progress {
		if prg.StudentID == studentID && prg.LabID == labID {
			return prg, nil
		}
	}
	return models.StudentLabProgress{}, ErrNotFound
}

func (m *Memory) ProgressByStudent(studentID int64) ([]models.StudentLabProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := []models.StudentLabProgress{}
	for _, prg := range m.s.progress {
		if prg.StudentID == studentID {
			entries = append(entries, prg)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LabID < entries[j].LabID })
	return entries, nil
}

func (m *Memory) DeleteProgressByStudent(studentID int64) error {
	if err := m.fail("DeleteProgressByStudent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, prg := range m.s.progress {
		if prg.StudentID == studentID {
			delete(m.s.progress, id)
		}
	}
	return nil
}

func (m *Memory) UpdateProgress(prg models.StudentLabProgress) error {
	if err := m.fail("UpdateProgress"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.s.progress[prg.ID]; !ok {
		return ErrNotFound
	}
	m.s.progress[prg.ID] = prg
	return nil
}
