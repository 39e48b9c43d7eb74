// AngelaMos | 2026
// export.go

package job

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Jobs"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{
	"Title",
	"Company",
	"Status",
	"Location",
	"Employment type",
	"Salary min",
	"Salary max",
	"Source",
	"URL",
	"Applied at",
	"Created at",
	"Notes",
}

// Export renders every live job of the user as an XLSX workbook.
func (s *Service) Export(ctx context.Context, userID string) ([]byte, error) {
	jobs, err := s.repo.ListForExport(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(jobs)
}

func buildWorkbook(jobs []Job) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return nil, fmt.Errorf("export jobs: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("export jobs: header: %w", err)
	}

	for i := range jobs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export jobs: cell: %w", err)
		}
		row := exportRow(&jobs[i])
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export jobs: row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("export jobs: write: %w", err)
	}

	return buf.Bytes(), nil
}

func exportRow(j *Job) []any {
	return []any{
		j.Title,
		j.CompanyName,
		string(j.Status),
		j.Location,
		j.EmploymentType,
		optionalInt(j.SalaryMin),
		optionalInt(j.SalaryMax),
		j.Source,
		j.URL,
		optionalTime(j.AppliedAt),
		j.CreatedAt.UTC().Format(time.RFC3339),
		j.Notes,
	}
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func exportFilename(now time.Time) string {
	return fmt.Sprintf("jobs_%s.xlsx", now.UTC().Format("20060102_150405"))
}
