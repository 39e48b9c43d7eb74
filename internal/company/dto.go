// AngelaMos | 2026
// dto.go

package company

import (
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type CreateCompanyRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=200"`
	Website  string `json:"website"  validate:"omitempty,url,max=500"`
	Industry string `json:"industry" validate:"max=100"`
	Location string `json:"location" validate:"max=200"`
	Size     string `json:"size"     validate:"max=50"`
	Notes    string `json:"notes"    validate:"max=5000"`
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=200"`
	Website  *string `json:"website,omitempty"  validate:"omitempty,url,max=500"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Size     *string `json:"size,omitempty"     validate:"omitempty,max=50"`
	Notes    *string `json:"notes,omitempty"    validate:"omitempty,max=5000"`
}

type ListParams struct {
	core.PageParams
	Search string
}

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website"`
	Industry  string    `json:"industry"`
	Location  string    `json:"location"`
	Size      string    `json:"size"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToCompanyResponse(c *Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Website:   c.Website,
		Industry:  c.Industry,
		Location:  c.Location,
		Size:      c.Size,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToCompanyResponseList(companies []Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, ToCompanyResponse(&companies[i]))
	}
	return out
}
