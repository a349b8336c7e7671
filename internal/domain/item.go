package domain

import "time"

// Stage is a fixed workflow phase a work item sits in.
type Stage string

const (
	StageDesign      Stage = "design"
	StageEngineering Stage = "engineering"
	StageCNC         Stage = "cnc"
	StageProduction  Stage = "production"
	StageWarranty    Stage = "warranty"
)

// Stages lists every valid stage in board order.
var Stages = []Stage{
	StageDesign,
	StageEngineering,
	StageCNC,
	StageProduction,
	StageWarranty,
}

func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// ItemStatus is the derived schedule status of a work item.
type ItemStatus string

const (
	StatusCompleted ItemStatus = "completed"
	StatusOverdue   ItemStatus = "overdue"
	StatusActive    ItemStatus = "active"
	StatusUpcoming  ItemStatus = "upcoming"
)

const (
	DefaultPriority = "Medium"
	DefaultDuration = 5
	DefaultClient   = "Unknown"
	DefaultTaskName = "Công việc mới"
)

// Tag is a label auto-derived from keywords in the task text.
type Tag struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// WorkItem is one trackable task row with stage, schedule and progress.
// Tags are derived from TaskName on every write, never edited directly.
type WorkItem struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Client    string    `json:"client"`
	TaskName  string    `json:"task_name"`
	Stage     Stage     `json:"stage"`
	Tags      []Tag     `json:"tags"`
	StartDate string    `json:"start_date"`
	Duration  int       `json:"duration"`
	Priority  string    `json:"priority"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupedOrder aggregates filtered items sharing a title. Derived on demand,
// never persisted.
type GroupedOrder struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Client        string     `json:"client"`
	Items         []WorkItem `json:"items"`
	MinStart      string     `json:"min_start"`
	MaxEnd        string     `json:"max_end"`
	TotalProgress int        `json:"total_progress"`
}

// StatData holds the dashboard counters.
type StatData struct {
	Total     int `json:"total"`
	Overdue   int `json:"overdue"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// SmartFilter narrows a listing by derived schedule status.
type SmartFilter string

const (
	SmartFilterAll     SmartFilter = "all"
	SmartFilterOverdue SmartFilter = "overdue"
	SmartFilterActive  SmartFilter = "active"
)

// ListFilter selects items for listing, stats and grouping.
type ListFilter struct {
	Stage  string
	Search string
	Smart  SmartFilter
}
