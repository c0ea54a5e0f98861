package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
	"github.com/noah-isme/campus-course-api/pkg/export"
)

// ExportFormat selects the rendering backend for roster sheets.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportGroupReader interface {
	ListMembersByLeader(ctx context.Context, leaderID string) ([]models.GroupMember, error)
}

type exportPointsReader interface {
	TotalsByStudents(ctx context.Context, studentIDs []string) (map[string]int, error)
}

type exportUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type rosterCSVRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type rosterPDFRenderer interface {
	Render(title string, data export.Dataset) ([]byte, error)
}

// RosterExport bundles rendered bytes with response metadata.
type RosterExport struct {
	Content  []byte
	Filename string
	MimeType string
}

// ExportService renders a leader's roster, with each student's point
// total, as a downloadable sheet.
type ExportService struct {
	groups exportGroupReader
	points exportPointsReader
	users  exportUserReader
	csv    rosterCSVRenderer
	pdf    rosterPDFRenderer
	logger *zap.Logger
}

// NewExportService constructs the service with default renderers.
func NewExportService(groups exportGroupReader, points exportPointsReader, users exportUserReader, logger *zap.Logger, csv rosterCSVRenderer, pdf rosterPDFRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{groups: groups, points: points, users: users, logger: logger, csv: csv, pdf: pdf}
}

// Roster renders the leader's current students and their point totals.
func (s *ExportService) Roster(ctx context.Context, leaderID string, format ExportFormat) (*RosterExport, error) {
	switch format {
	case ExportFormatCSV, ExportFormatPDF:
	default:
		return nil, appErrors.NewValidation(map[string][]string{"format": {"must be csv or pdf"}})
	}
	leader, err := s.users.FindByID(ctx, leaderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leader not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leader")
	}
	members, err := s.groups.ListMembersByLeader(ctx, leaderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group members")
	}
	studentIDs := make([]string, len(members))
	for i, member := range members {
		studentIDs[i] = member.StudentID
	}
	totals, err := s.points.TotalsByStudents(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum points")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Assigned", "Points"},
		Rows:    make([]map[string]string, 0, len(members)),
	}
	for _, member := range members {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":  member.FullName,
			"Email":    member.Email,
			"Assigned": member.AssignedAt.UTC().Format("2006-01-02"),
			"Points":   strconv.Itoa(totals[member.StudentID]),
		})
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(fmt.Sprintf("Group Roster - %s", leader.FullName), dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	result := &RosterExport{
		Content:  payload,
		Filename: fmt.Sprintf("roster_%s_%s.%s", leaderID, time.Now().UTC().Format("20060102"), format),
		MimeType: rosterMimeType(format),
	}
	s.logger.Info("roster exported",
		zap.String("leader_id", leaderID),
		zap.String("format", string(format)),
		zap.Int("students", len(members)))
	return result, nil
}

func rosterMimeType(format ExportFormat) string {
	if format == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
