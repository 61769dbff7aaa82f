package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/dto"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
	"github.com/campusdesk/complaint-api/pkg/export"
)

type statisticsRepository interface {
	SummaryCounts(ctx context.Context) (*dto.StatisticsSummary, error)
	AvgResolutionDays(ctx context.Context) (float64, error)
	CountByType(ctx context.Context) ([]dto.TypeCount, error)
	CountByRole(ctx context.Context) ([]dto.RoleCount, error)
	LongestOpen(ctx context.Context, filter dto.LongestOpenFilter) ([]dto.LongestOpenRow, error)
	RecentlyClosed(ctx context.Context) ([]dto.RecentlyClosedRow, error)
	StaffLoad(ctx context.Context) ([]dto.StaffLoadRow, error)
	Dashboard(ctx context.Context) (*dto.AdminDashboard, error)
	StaffOverview(ctx context.Context) (*dto.StaffOverview, error)
}

// ExportFormat selects the statistics export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// statsCachePattern matches every cached statistics payload; mutating
// services invalidate it after each complaint or assignment write.
const statsCachePattern = "stats:*"

// StatisticsService computes aggregate views over the complaints table.
// Results are always derived from live rows; the optional cache only kicks in
// when explicitly enabled in configuration.
type StatisticsService struct {
	repo   statisticsRepository
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewStatisticsService constructs a StatisticsService instance.
func NewStatisticsService(repo statisticsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatisticsService{
		repo:   repo,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Summary returns the headline counters plus by-type and by-role breakdowns.
func (s *StatisticsService) Summary(ctx context.Context) (*dto.StatisticsSummary, error) {
	const cacheKey = "stats:summary"
	if s.cache.Enabled() {
		var cached dto.StatisticsSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	summary, err := s.repo.SummaryCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}

	avg, err := s.repo.AvgResolutionDays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute resolution time")
	}
	summary.AvgResolutionDays = avg

	if summary.ByType, err = s.repo.CountByType(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute type breakdown")
	}
	if summary.ByRole, err = s.repo.CountByRole(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute role breakdown")
	}
	summary.GeneratedAt = s.now().UTC()

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// LongestOpen returns the oldest unresolved complaints with their age in days.
func (s *StatisticsService) LongestOpen(ctx context.Context, filter dto.LongestOpenFilter) ([]dto.LongestOpenRow, error) {
	rows, err := s.repo.LongestOpen(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list longest open complaints")
	}
	now := s.now().UTC()
	for i := range rows {
		rows[i].DaysOpen = int(now.Sub(rows[i].CreatedAt).Hours() / 24)
	}
	return rows, nil
}

// RecentlyClosed returns the latest solved complaints.
func (s *StatisticsService) RecentlyClosed(ctx context.Context) ([]dto.RecentlyClosedRow, error) {
	rows, err := s.repo.RecentlyClosed(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recently closed complaints")
	}
	return rows, nil
}

// StaffLoad returns the total assigned-complaint count per staff member.
func (s *StatisticsService) StaffLoad(ctx context.Context) ([]dto.StaffLoadRow, error) {
	rows, err := s.repo.StaffLoad(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute staff load")
	}
	return rows, nil
}

// Dashboard returns the admin landing page payload.
func (s *StatisticsService) Dashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	dashboard, err := s.repo.Dashboard(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compose dashboard")
	}
	return dashboard, nil
}

// StaffOverview returns the staff dashboard payload.
func (s *StatisticsService) StaffOverview(ctx context.Context) (*dto.StaffOverview, error) {
	overview, err := s.repo.StaffOverview(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compose staff overview")
	}
	return overview, nil
}

// Export renders the statistics summary as CSV or PDF and returns the bytes
// together with a suggested file name.
func (s *StatisticsService) Export(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := summaryDataset(summary)
	stamp := s.now().UTC().Format("20060102-150405")

	switch format {
	case ExportCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, fmt.Sprintf("complaint-statistics-%s.csv", stamp), nil
	case ExportPDF:
		data, err := s.pdf.Render(dataset, "Complaint Statistics")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, fmt.Sprintf("complaint-statistics-%s.pdf", stamp), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func summaryDataset(summary *dto.StatisticsSummary) export.Dataset {
	headers := []string{"Metric", "Value"}
	rows := []map[string]string{
		{"Metric": "Total complaints", "Value": strconv.Itoa(summary.TotalComplaints)},
		{"Metric": "Unsolved", "Value": strconv.Itoa(summary.Unsolved)},
		{"Metric": "Pending", "Value": strconv.Itoa(summary.Pending)},
		{"Metric": "In progress", "Value": strconv.Itoa(summary.InProgress)},
		{"Metric": "Solved", "Value": strconv.Itoa(summary.Solved)},
		{"Metric": "Rejected", "Value": strconv.Itoa(summary.Rejected)},
		{"Metric": "Unassigned", "Value": strconv.Itoa(summary.Unassigned)},
		{"Metric": "Avg resolution days", "Value": strconv.FormatFloat(summary.AvgResolutionDays, 'f', 2, 64)},
	}
	for _, tc := range summary.ByType {
		rows = append(rows, map[string]string{
			"Metric": "Type: " + tc.Type,
			"Value":  strconv.Itoa(tc.Count),
		})
	}
	for _, rc := range summary.ByRole {
		rows = append(rows, map[string]string{
			"Metric": "Role: " + rc.Role,
			"Value":  strconv.Itoa(rc.Count),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
