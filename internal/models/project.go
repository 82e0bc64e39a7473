package models

import "time"

// Project is a construction project owned by one user with an optional list
// of collaborators. Ownership and collaborator membership drive the
// resource-level authorization checks.
type Project struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status,omitempty"`
	Location      string     `json:"location,omitempty"`
	EstimatedCost int64      `json:"estimated_cost,omitempty"`
	OwnerUID      string     `json:"owner_uid"`
	Collaborators []string   `json:"collaborators"`
	Tasks         []Task     `json:"tasks,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Task is a work item inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CanAccess reports whether uid is the owner or a listed collaborator.
func (p *Project) CanAccess(uid string) bool {
	if p.OwnerUID == uid {
		return true
	}
	for _, c := range p.Collaborators {
		if c == uid {
			return true
		}
	}
	return false
}
