package models

import "time"

// Canonical role values. Authorization decisions compare against these,
// never against the localized labels below.
const (
	RoleStudent       = "student"
	RoleTeacher       = "teacher"
	RoleAdministrator = "administrator"
)

var roleLabels = map[string]string{
	RoleStudent:       "étudiant",
	RoleTeacher:       "enseignant",
	RoleAdministrator: "administrateur",
}

// RoleLabel returns the localized display label for a role code.
func RoleLabel(role string) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return role
}

// ValidRole reports whether role is one of the three canonical values.
func ValidRole(role string) bool {
	_, ok := roleLabels[role]
	return ok
}

// Lab statuses.
const (
	LabPending  = "pending"
	LabApproved = "approved"
	LabRejected = "rejected"
)

// Progress statuses.
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

type ClassGroup struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Student extends a User with role=student by a class membership.
// A student belongs to at most one class; reassignment moves the row.
type Student struct {
	UserID  int64 `db:"user_id"`
	ClassID int64 `db:"class_id"`
}

type Subject struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// ClassSubject attaches a Subject to a ClassGroup's curriculum.
// (ClassID, SubjectID) is unique.
type ClassSubject struct {
	ClassID   int64 `db:"class_id"`
	SubjectID int64 `db:"subject_id"`
}

// TeacherAssignment names the teacher for a class-subject pair. At most one
// teacher per (ClassID, SubjectID); it may exist only where the matching
// ClassSubject link exists.
type TeacherAssignment struct {
	ClassID   int64 `db:"class_id"`
	SubjectID int64 `db:"subject_id"`
	TeacherID int64 `db:"teacher_id"`
}

type Lab struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	SubjectID    int64      `db:"subject_id"`
	CreatedBy    int64      `db:"created_by"`
	Status       string     `db:"status"`
	CreationDate time.Time  `db:"creation_date"`
	ApprovalDate *time.Time `db:"approval_date"`
	Description  *string    `db:"description"`
	Instructions *string    `db:"instructions"`
}

// StudentLabProgress tracks one student's progress on one lab. StartDate and
// CompletionDate are first-occurrence markers: set when the status first
// reaches in_progress / completed, never cleared by a backward transition.
type StudentLabProgress struct {
	ID             int64      `db:"id"`
	StudentID      int64      `db:"student_id"`
	LabID          int64      `db:"lab_id"`
	Status         string     `db:"status"`
	StartDate      *time.Time `db:"start_date"`
	CompletionDate *time.Time `db:"completion_date"`
	Score          *float64   `db:"score"`
	Comments       *string    `db:"comments"`
}

// ServerMetricSample is one snapshot of host and process health, stored for
// the admin dashboard and pushed live to connected websocket clients.
type ServerMetricSample struct {
	ID                string    `db:"id" json:"id"`
	CapturedAt        time.Time `db:"captured_at" json:"capturedAt"`
	ProcessRSSBytes   int64     `db:"process_rss_bytes" json:"processRssBytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes" json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes" json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes" json:"diskTotalBytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes" json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load" json:"processCpuLoad"`
	SystemCpuLoad     float64   `db:"system_cpu_load" json:"systemCpuLoad"`
}

type SiteVisit struct {
	ID        string    `db:"id"`
	IPAddress *string   `db:"ip_address"`
	UserAgent *string   `db:"user_agent"`
	Path      *string   `db:"path"`
	Referrer  *string   `db:"referrer"`
	CreatedAt time.Time `db:"created_at"`
}
