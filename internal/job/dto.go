// AngelaMos | 2026
// dto.go

package job

import (
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type CreateJobRequest struct {
	CompanyID      *string `json:"companyId,omitempty"      validate:"omitempty,uuid"`
	Title          string  `json:"title"                    validate:"required,min=1,max=200"`
	CompanyName    string  `json:"companyName"              validate:"max=200"`
	Location       string  `json:"location"                 validate:"max=200"`
	URL            string  `json:"url"                      validate:"omitempty,url,max=1000"`
	Description    string  `json:"description"              validate:"max=20000"`
	SalaryMin      *int    `json:"salaryMin,omitempty"      validate:"omitempty,min=0"`
	SalaryMax      *int    `json:"salaryMax,omitempty"      validate:"omitempty,min=0"`
	EmploymentType string  `json:"employmentType"           validate:"max=50"`
	Source         string  `json:"source"                   validate:"max=100"`
	Status         string  `json:"status,omitempty"         validate:"omitempty,oneof=saved applied interviewing offered accepted rejected withdrawn"`
	Notes          string  `json:"notes"                    validate:"max=10000"`
}

type UpdateJobRequest struct {
	CompanyID      *string `json:"companyId,omitempty"      validate:"omitempty,uuid"`
	Title          *string `json:"title,omitempty"          validate:"omitempty,min=1,max=200"`
	CompanyName    *string `json:"companyName,omitempty"    validate:"omitempty,min=1,max=200"`
	Location       *string `json:"location,omitempty"       validate:"omitempty,max=200"`
	URL            *string `json:"url,omitempty"            validate:"omitempty,url,max=1000"`
	Description    *string `json:"description,omitempty"    validate:"omitempty,max=20000"`
	SalaryMin      *int    `json:"salaryMin,omitempty"      validate:"omitempty,min=0"`
	SalaryMax      *int    `json:"salaryMax,omitempty"      validate:"omitempty,min=0"`
	EmploymentType *string `json:"employmentType,omitempty" validate:"omitempty,max=50"`
	Source         *string `json:"source,omitempty"         validate:"omitempty,max=100"`
	Notes          *string `json:"notes,omitempty"          validate:"omitempty,max=10000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=saved applied interviewing offered accepted rejected withdrawn"`
	Note   string `json:"note"   validate:"max=2000"`
}

type ListParams struct {
	core.PageParams
	Status    Status
	Search    string
	CompanyID string
}

type JobResponse struct {
	ID             string     `json:"id"`
	CompanyID      *string    `json:"companyId"`
	Title          string     `json:"title"`
	CompanyName    string     `json:"companyName"`
	Location       string     `json:"location"`
	URL            string     `json:"url"`
	Description    string     `json:"description"`
	SalaryMin      *int       `json:"salaryMin"`
	SalaryMax      *int       `json:"salaryMax"`
	EmploymentType string     `json:"employmentType"`
	Source         string     `json:"source"`
	Status         Status     `json:"status"`
	Notes          string     `json:"notes"`
	AppliedAt      *time.Time `json:"appliedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// StatsResponse counts a user's jobs per status. Every status is present.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

func ToJobResponse(j *Job) JobResponse {
	return JobResponse{
		ID:             j.ID,
		CompanyID:      j.CompanyID,
		Title:          j.Title,
		CompanyName:    j.CompanyName,
		Location:       j.Location,
		URL:            j.URL,
		Description:    j.Description,
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		EmploymentType: j.EmploymentType,
		Source:         j.Source,
		Status:         j.Status,
		Notes:          j.Notes,
		AppliedAt:      j.AppliedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func ToJobResponseList(jobs []Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, ToJobResponse(&jobs[i]))
	}
	return out
}

func ToStatsResponse(counts map[Status]int) StatsResponse {
	resp := StatsResponse{ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		resp.ByStatus[st] = counts[st]
		resp.Total += counts[st]
	}
	return resp
}
