package service

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"
	"training_tracker/pkg/logger"
	"training_tracker/pkg/monitoring"
	"training_tracker/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var exportHeader = []string{
	"User Name",
	"User Email",
	"Course Title",
	"Course Category",
	"Skill Level",
	"Mandatory",
	"Resource Type",
	"Duration (minutes)",
	"Due Date",
	"Status",
	"Started Date",
	"Completed Date",
	"Assigned Date",
}

// short date layouts per supported locale; the first entry is the fallback
var dateLocales = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLocales))
	for i, l := range dateLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DateLayoutFor picks the short-date layout for an Accept-Language header.
func DateLayoutFor(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return dateLocales[0].layout
	}
	_, i, confidence := dateMatcher.Match(tags...)
	if confidence == language.No {
		return dateLocales[0].layout
	}
	return dateLocales[i].layout
}

// CSVReport is an exported report ready to be sent as an attachment.
type CSVReport struct {
	Filename   string
	Content    []byte
	ArchiveURL string
}

// ExportCSV renders one row per assignment joined to its progress row.
// When archiving is enabled the file is also uploaded to object storage; a
// failed upload is logged and does not fail the export.
func (s *ReportService) ExportCSV(ctx context.Context, acceptLanguage string) (*CSVReport, error) {
	layout := DateLayoutFor(acceptLanguage)
	ctx, span := tracing.StartSpan(ctx, "report.export_csv", attribute.String("report.date_layout", layout))
	defer span.End()

	assignments, err := s.AssignmentRepo.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return nil, err
	}
	progresses, err := s.ProgressRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if s.Cfg != nil {
		loc = s.Cfg.Location()
	}
	rows := BuildExportRows(assignments, progresses, layout, loc)
	span.SetAttributes(attribute.Int("report.rows", len(rows)-1))

	var buf bytes.Buffer
	if err := WriteQuotedCSV(&buf, rows); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	report := &CSVReport{
		Filename: "training-report-" + now.Format(util.DateFormat) + ".csv",
		Content:  buf.Bytes(),
	}
	monitoring.ReportExports.Inc()

	if s.Cfg != nil && s.Cfg.Archive && s.Storage != nil {
		key := "training-report-" + now.Format("20060102T150405Z") + ".csv"
		archiveURL, err := s.Storage.Upload(ctx, key, bytes.NewReader(report.Content), int64(len(report.Content)), util.MimeCSV)
		if err != nil {
			logger.Log.Warn("failed to archive report export", zap.String("key", key), zap.Error(err))
		} else {
			report.ArchiveURL = archiveURL
		}
	}
	return report, nil
}

// BuildExportRows returns the header followed by one row per assignment.
func BuildExportRows(assignments []model.CourseAssignment, progresses []model.CourseProgress, layout string, loc *time.Location) [][]string {
	byPair := make(map[pairKey]*model.CourseProgress, len(progresses))
	for i := range progresses {
		p := &progresses[i]
		byPair[pairKey{p.UserID, p.CourseID}] = p
	}

	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.In(loc).Format(layout)
	}

	rows := make([][]string, 0, len(assignments)+1)
	rows = append(rows, exportHeader)
	for i := range assignments {
		a := &assignments[i]
		var userName, userEmail string
		if a.User != nil {
			userName, userEmail = a.User.Name, a.User.Email
		}
		course := a.Course
		if course == nil {
			course = &model.Course{}
		}
		mandatory := "No"
		if course.Mandatory {
			mandatory = "Yes"
		}
		duration := ""
		if course.DurationMinutes != nil {
			duration = strconv.Itoa(*course.DurationMinutes)
		}

		status := model.StatusNotStarted.Label()
		var startedAt, completedAt *time.Time
		if p, ok := byPair[pairKey{a.UserID, a.CourseID}]; ok {
			status = p.Status.Label()
			startedAt, completedAt = p.StartedAt, p.CompletedAt
		}

		createdAt := a.CreatedAt
		rows = append(rows, []string{
			userName,
			userEmail,
			course.Title,
			course.Category,
			course.SkillLevel,
			mandatory,
			string(course.ResourceType),
			duration,
			date(a.DueDate),
			status,
			date(startedAt),
			date(completedAt),
			date(&createdAt),
		})
	}
	return rows
}

// WriteQuotedCSV writes every field wrapped in double quotes, doubling any
// embedded quote, with rows separated by "\n".
func WriteQuotedCSV(w io.Writer, rows [][]string) error {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
