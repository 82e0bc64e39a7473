package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

// CreateProject stores a new project and returns its generated id.
func (s *Storage) CreateProject(ctx context.Context, p models.Project) (string, error) {
	const op = "storage.CreateProject"
	var id string
	query := `INSERT INTO projects (name, description, status, location, estimated_cost,
	              owner_uid, start_date, end_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Status, p.Location, p.EstimatedCost,
		p.OwnerUID, p.StartDate, p.EndDate).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetProject loads a project with its collaborator list and tasks.
func (s *Storage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "storage.GetProject"

	p := &models.Project{ID: id}
	var startDate, endDate sql.NullTime
	err := s.DB.QueryRowContext(ctx,
		`SELECT name, description, status, location, estimated_cost, owner_uid,
		        start_date, end_date, created_at, updated_at
		 FROM projects WHERE id = $1`, id).Scan(
		&p.Name, &p.Description, &p.Status, &p.Location, &p.EstimatedCost, &p.OwnerUID,
		&startDate, &endDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}

	collabRows, err := s.DB.QueryContext(ctx,
		`SELECT user_uid FROM project_collaborators WHERE project_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = collabRows.Close()
	}()
	for collabRows.Next() {
		var uid string
		if err = collabRows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Collaborators = append(p.Collaborators, uid)
	}
	if err = collabRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	taskRows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, description, status, priority, assigned_to, due_date, created_at
		 FROM tasks WHERE project_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = taskRows.Close()
	}()
	for taskRows.Next() {
		t := models.Task{ProjectID: id}
		var assignedTo sql.NullString
		var dueDate sql.NullTime
		if err = taskRows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&assignedTo, &dueDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if assignedTo.Valid {
			t.AssignedTo = assignedTo.String
		}
		if dueDate.Valid {
			t.DueDate = &dueDate.Time
		}
		p.Tasks = append(p.Tasks, t)
	}
	if err = taskRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// ListProjectsForUser returns the projects the user owns or collaborates on.
func (s *Storage) ListProjectsForUser(ctx context.Context, userUID string) ([]*models.Project, error) {
	const op = "storage.ListProjectsForUser"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, description, status, location, estimated_cost, owner_uid,
		        start_date, end_date, created_at, updated_at
		 FROM projects p
		 WHERE p.owner_uid = $1
		    OR EXISTS (SELECT 1 FROM project_collaborators c
		               WHERE c.project_id = p.id AND c.user_uid = $1)
		 ORDER BY created_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Project
	for rows.Next() {
		p := &models.Project{}
		var startDate, endDate sql.NullTime
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Location,
			&p.EstimatedCost, &p.OwnerUID, &startDate, &endDate,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if startDate.Valid {
			p.StartDate = &startDate.Time
		}
		if endDate.Valid {
			p.EndDate = &endDate.Time
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProject patches the updatable fields of a project.
func (s *Storage) UpdateProject(ctx context.Context, p models.Project) error {
	const op = "storage.UpdateProject"
	query := `UPDATE projects
	          SET name = $1, description = $2, status = $3, location = $4,
	              estimated_cost = $5, start_date = $6, end_date = $7, updated_at = now()
	          WHERE id = $8`
	res, err := s.DB.ExecContext(ctx, query,
		p.Name, p.Description, p.Status, p.Location, p.EstimatedCost,
		p.StartDate, p.EndDate, p.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrProjectNotFound)
	}
	return nil
}

// DeleteProject removes a project; collaborators, tasks and document rows
// follow via ON DELETE CASCADE.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	const op = "storage.DeleteProject"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrProjectNotFound)
	}
	return nil
}

// AddTask appends a task to a project and returns the generated id.
func (s *Storage) AddTask(ctx context.Context, t models.Task) (string, error) {
	const op = "storage.AddTask"
	var id string
	query := `INSERT INTO tasks (project_id, title, description, status, priority, assigned_to, due_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		nullString(t.AssignedTo), t.DueDate).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// AddCollaborator links a user to a project. A duplicate surfaces as
// errs.ErrAlreadyCollaborator.
func (s *Storage) AddCollaborator(ctx context.Context, projectID, userUID string) error {
	const op = "storage.AddCollaborator"
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO project_collaborators (project_id, user_uid)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, projectID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrAlreadyCollaborator)
	}
	return nil
}
