package store

import "time"

const (
	ResourceURL  = "url"
	ResourceNote = "note"
	ResourceFile = "file"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Session types, one per timer phase.
const (
	SessionWork       = "work"
	SessionShortBreak = "short_break"
	SessionLongBreak  = "long_break"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
	StatusCancelled   = "cancelled"
)

const DefaultModuleColor = "#3B82F6"

type Module struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Color          string     `json:"color"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
}

// ModuleDetail is a module together with everything it owns.
type ModuleDetail struct {
	Module
	Resources []Resource `json:"resources"`
	Todos     []Todo     `json:"todos"`
}

type Resource struct {
	ID          int64     `json:"id"`
	ModuleID    int64     `json:"module_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	FilePath    *string   `json:"file_path"`
	AccessCount int64     `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Todo struct {
	ID          int64      `json:"id"`
	ModuleID    int64      `json:"module_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type Session struct {
	ID              int64      `json:"id"`
	ModuleID        *int64     `json:"module_id"`
	TodoID          *int64     `json:"todo_id"`
	Type            string     `json:"session_type"`
	PlannedDuration int64      `json:"planned_duration"` // seconds
	ActualDuration  *int64     `json:"actual_duration"`  // seconds
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	Notes           string     `json:"notes"`

	// Filled by ListSessions.
	ModuleName string `json:"module_name,omitempty"`
	TodoTitle  string `json:"todo_title,omitempty"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ModuleInput carries the writable fields of a module.
type ModuleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type ResourceInput struct {
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	Content  string  `json:"content"`
	FilePath *string `json:"-"`
}

type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

// NewSession describes a session row at the moment a timer phase starts.
type NewSession struct {
	ModuleID        *int64    `json:"module_id"`
	TodoID          *int64    `json:"todo_id"`
	Type            string    `json:"session_type"`
	PlannedDuration int64     `json:"planned_duration"`
	StartedAt       time.Time `json:"started_at"`
	Notes           string    `json:"notes"`
}

// SessionFilter narrows ListSessions. From and To are inclusive calendar
// dates (UTC) compared against started_at.
type SessionFilter struct {
	ModuleID *int64
	Status   string
	Type     string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// Match reports whether sess passes f, using the same rules ListSessions
// applies in SQL. Limit is ignored.
func (f SessionFilter) Match(sess Session) bool {
	if f.ModuleID != nil && (sess.ModuleID == nil || *sess.ModuleID != *f.ModuleID) {
		return false
	}
	if f.Status != "" && sess.Status != f.Status {
		return false
	}
	if f.Type != "" && sess.Type != f.Type {
		return false
	}
	day := sess.StartedAt.UTC().Format(time.DateOnly)
	if f.From != nil && day < f.From.UTC().Format(time.DateOnly) {
		return false
	}
	if f.To != nil && day > f.To.UTC().Format(time.DateOnly) {
		return false
	}
	return true
}
