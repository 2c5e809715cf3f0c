package toggl

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"toggl-assistant/internal/domain"
)

// rawTimeEntry mirrors the JSON from Toggl v9. Required fields are pointers
// so a missing key can be told apart from a zero value. Unknown keys are
// ignored.
type rawTimeEntry struct {
	ID           *int64     `json:"id"`
	WorkspaceID  *int64     `json:"workspace_id"`
	Wid          *int64     `json:"wid"`
	UserID       *int64     `json:"user_id"`
	UID          *int64     `json:"uid"`
	ProjectID    *int64     `json:"project_id"`
	TaskID       *int64     `json:"task_id"`
	Billable     *bool      `json:"billable"`
	Start        *time.Time `json:"start"`
	Stop         *time.Time `json:"stop"`
	Duration     *int64     `json:"duration"`
	Description  *string    `json:"description"`
	Tags         []string   `json:"tags"`
	ProjectName  *string    `json:"project_name"`
	ProjectColor *string    `json:"project_color"`
	ClientName   *string    `json:"client_name"`
	TaskName     *string    `json:"task_name"`
	UserName     *string    `json:"user_name"`
	At           *time.Time `json:"at"`
}

func (r rawTimeEntry) toDomain() (domain.TimeEntry, error) {
	ws := firstNonNil(r.WorkspaceID, r.Wid)
	user := firstNonNil(r.UserID, r.UID)
	switch {
	case r.ID == nil:
		return domain.TimeEntry{}, missingField("id")
	case ws == nil:
		return domain.TimeEntry{}, missingField("workspace_id")
	case user == nil:
		return domain.TimeEntry{}, missingField("user_id")
	case r.Billable == nil:
		return domain.TimeEntry{}, missingField("billable")
	case r.Start == nil:
		return domain.TimeEntry{}, missingField("start")
	case r.Duration == nil:
		return domain.TimeEntry{}, missingField("duration")
	}
	if *r.Duration < 0 && r.Stop != nil {
		return domain.TimeEntry{}, fmt.Errorf("running entry %d has a stop time", *r.ID)
	}
	if *r.Duration >= 0 && r.Stop == nil {
		return domain.TimeEntry{}, fmt.Errorf("stopped entry %d has no stop time", *r.ID)
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.TimeEntry{
		ID:           *r.ID,
		WorkspaceID:  *ws,
		UserID:       *user,
		ProjectID:    r.ProjectID,
		TaskID:       r.TaskID,
		Billable:     *r.Billable,
		Start:        *r.Start,
		Stop:         r.Stop,
		DurationSec:  *r.Duration,
		Description:  r.Description,
		Tags:         tags,
		ProjectName:  r.ProjectName,
		ProjectColor: r.ProjectColor,
		ClientName:   r.ClientName,
		TaskName:     r.TaskName,
		UserName:     r.UserName,
		At:           r.At,
	}, nil
}

type rawProject struct {
	ID             *int64     `json:"id"`
	WorkspaceID    *int64     `json:"workspace_id"`
	Wid            *int64     `json:"wid"`
	Name           *string    `json:"name"`
	Active         *bool      `json:"active"`
	Private        *bool      `json:"is_private"`
	Color          *string    `json:"color"`
	ClientID       *int64     `json:"client_id"`
	Cid            *int64     `json:"cid"`
	Billable       *bool      `json:"billable"`
	At             *time.Time `json:"at"`
	Currency       *string    `json:"currency"`
	Rate           *float64   `json:"rate"`
	FixedFee       *float64   `json:"fixed_fee"`
	EstimatedHours *int64     `json:"estimated_hours"`
	ActualHours    *int64     `json:"actual_hours"`
	AutoEstimates  *bool      `json:"auto_estimates"`
	Recurring      *bool      `json:"recurring"`
	Template       *bool      `json:"template"`
	Status         *string    `json:"status"`
	StartDate      *string    `json:"start_date"`
	EndDate        *string    `json:"end_date"`
	CreatedAt      *string    `json:"created_at"`
}

func (r rawProject) toDomain() (domain.Project, error) {
	ws := firstNonNil(r.WorkspaceID, r.Wid)
	switch {
	case r.ID == nil:
		return domain.Project{}, missingField("id")
	case ws == nil:
		return domain.Project{}, missingField("workspace_id")
	case r.Name == nil || *r.Name == "":
		return domain.Project{}, missingField("name")
	case r.Active == nil:
		return domain.Project{}, missingField("active")
	}
	p := domain.Project{
		ID:             *r.ID,
		WorkspaceID:    *ws,
		Name:           *r.Name,
		Active:         *r.Active,
		ClientID:       firstNonNil(r.ClientID, r.Cid),
		Billable:       r.Billable,
		At:             r.At,
		Currency:       r.Currency,
		Rate:           r.Rate,
		FixedFee:       r.FixedFee,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
		AutoEstimates:  r.AutoEstimates,
		Recurring:      r.Recurring,
		Template:       r.Template,
		Status:         r.Status,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		CreatedAt:      r.CreatedAt,
	}
	if r.Private != nil {
		p.Private = *r.Private
	}
	if r.Color != nil {
		p.Color = *r.Color
	}
	return p, nil
}

type rawProjectMembership struct {
	ID          *int64     `json:"id"`
	ProjectID   *int64     `json:"project_id"`
	UserID      *int64     `json:"user_id"`
	WorkspaceID *int64     `json:"workspace_id"`
	Manager     *bool      `json:"manager"`
	GroupID     *int64     `json:"group_id"`
	Rate        *float64   `json:"rate"`
	LaborCost   *float64   `json:"labor_cost"`
	At          *time.Time `json:"at"`
}

func (r rawProjectMembership) toDomain() (domain.ProjectMembership, error) {
	switch {
	case r.ID == nil:
		return domain.ProjectMembership{}, missingField("id")
	case r.ProjectID == nil:
		return domain.ProjectMembership{}, missingField("project_id")
	case r.UserID == nil:
		return domain.ProjectMembership{}, missingField("user_id")
	case r.WorkspaceID == nil:
		return domain.ProjectMembership{}, missingField("workspace_id")
	case r.Manager == nil:
		return domain.ProjectMembership{}, missingField("manager")
	}
	return domain.ProjectMembership{
		ID:          *r.ID,
		ProjectID:   *r.ProjectID,
		UserID:      *r.UserID,
		WorkspaceID: *r.WorkspaceID,
		Manager:     *r.Manager,
		GroupID:     r.GroupID,
		Rate:        r.Rate,
		LaborCost:   r.LaborCost,
		At:          r.At,
	}, nil
}

// createTimeEntryBody is the POST payload for a new time entry.
type createTimeEntryBody struct {
	CreatedWith string   `json:"created_with"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Billable    bool     `json:"billable"`
	WorkspaceID int64    `json:"workspace_id"`
	Duration    int64    `json:"duration"`
	Start       string   `json:"start"`
	Stop        *string  `json:"stop"`
	ProjectID   *int64   `json:"project_id,omitempty"`
	TaskID      *int64   `json:"task_id,omitempty"`
}

func newCreateTimeEntryBody(req domain.TimeEntryCreateRequest) createTimeEntryBody {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return createTimeEntryBody{
		CreatedWith: req.CreatedWith,
		Description: req.Description,
		Tags:        tags,
		Billable:    req.Billable,
		WorkspaceID: req.WorkspaceID,
		Duration:    req.DurationSec,
		Start:       req.Start.UTC().Format(time.RFC3339),
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
	}
}

func decodeTimeEntry(data []byte) (domain.TimeEntry, error) {
	var r rawTimeEntry
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.TimeEntry{}, err
	}
	return r.toDomain()
}

func decodeProject(data []byte) (domain.Project, error) {
	var r rawProject
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Project{}, err
	}
	return r.toDomain()
}

func decodeProjectMembership(data []byte) (domain.ProjectMembership, error) {
	var r rawProjectMembership
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.ProjectMembership{}, err
	}
	return r.toDomain()
}

// decodeList decodes every element or fails as a whole.
func decodeList[T any](data []byte, decode func([]byte) (T, error)) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		v, err := decode(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

var errMissingField = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w %q", errMissingField, name)
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
