package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

type stubProgressService struct {
	summary  dto.ProgressSummaryResponse
	bar      dto.ProgressBarResponse
	overview dto.ProgressOverviewResponse
}

func (s stubProgressService) GetSummary(context.Context, dto.ProgressSummaryRequest) (dto.ProgressSummaryResponse, error) {
	return s.summary, nil
}

func (s stubProgressService) ListBlocks(_ context.Context, courseID uint) (dto.ProgressBlockListResponse, error) {
	return dto.ProgressBlockListResponse{CourseID: courseID}, nil
}

func (s stubProgressService) GetBar(context.Context, dto.ProgressBarRequest) (dto.ProgressBarResponse, error) {
	return s.bar, nil
}

func (s stubProgressService) GetOverview(context.Context, dto.ProgressOverviewRequest) (dto.ProgressOverviewResponse, error) {
	return s.overview, nil
}

func (s stubProgressService) RemapInstances(context.Context, dto.ProgressRemapRequest) (dto.ProgressRemapResponse, error) {
	return dto.ProgressRemapResponse{}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func fetchPayload(t *testing.T, svc stubProgressService, role, target string) interface{} {
	t.Helper()
	app := fiber.New()
	group := app.Group("/api/v2/progress", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(9))
		c.Locals("user_role", role)
		return c.Next()
	})
	handler.NewProgressHandler(svc, zerolog.Nop()).Register(group)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func sampleBar(now time.Time) progress.Bar {
	cells := []progress.Cell{
		{Type: "quiz", ID: 1, Name: "Quiz One", Status: progress.StatusPassed, State: progress.CellAttempted, Expected: now.Add(-24 * time.Hour), Link: "/mod/quiz/view.php?id=21"},
		{Type: "assign", ID: 2, Name: "Essay", Status: progress.StatusSubmitted, State: progress.CellSubmitted, Expected: now.Add(-time.Hour), Link: "/mod/assign/view.php?id=22"},
		{Type: "page", ID: 3, Name: "Reading", Status: progress.StatusNotAttempted, State: progress.CellFuture, Expected: now.Add(48 * time.Hour), Link: "/mod/page/view.php?id=23"},
	}
	return progress.Bar{Cells: cells, Rows: [][]progress.Cell{cells}, NowMarker: 2, Percentage: 33}
}

func TestProgressSummaryContract(t *testing.T) {
	schema := compileSchema(t, "progress_summary.schema.json")
	svc := stubProgressService{summary: dto.ProgressSummaryResponse{NumEvents: 3, NumAttempts: 1, ProgressValue: 33}}

	payload := fetchPayload(t, svc, "student", "/api/v2/progress/blocks/5/summary?course_id=1&user_id=7")
	require.NoError(t, schema.Validate(payload))
}

func TestProgressBarContract(t *testing.T) {
	schema := compileSchema(t, "progress_bar.schema.json")
	bar := sampleBar(time.Now().UTC())
	svc := stubProgressService{bar: dto.ProgressBarResponse{
		BlockID: 5, CourseID: 1, UserID: 7, Title: "Progress Bar", Outcome: "events", ShowPercentage: true, Bar: &bar,
	}}

	payload := fetchPayload(t, svc, "student", "/api/v2/progress/blocks/5/bar?course_id=1")
	require.NoError(t, schema.Validate(payload))

	empty := stubProgressService{bar: dto.ProgressBarResponse{BlockID: 5, CourseID: 1, UserID: 7, Title: "Progress Bar", Outcome: "empty"}}
	payload = fetchPayload(t, empty, "student", "/api/v2/progress/blocks/5/bar?course_id=1")
	require.NoError(t, schema.Validate(payload))
}

func TestProgressOverviewContract(t *testing.T) {
	schema := compileSchema(t, "progress_overview.schema.json")
	now := time.Now().UTC()
	svc := stubProgressService{overview: dto.ProgressOverviewResponse{
		BlockID:   5,
		CourseID:  1,
		Outcome:   "events",
		NumEvents: 3,
		Sort:      progress.DefaultOverviewSort,
		Rows: []progress.OverviewRow{
			{UserID: 7, FirstName: "Ada", LastName: "Lovelace", LastAccess: now, Progress: 33, Bar: sampleBar(now)},
		},
	}}

	payload := fetchPayload(t, svc, "teacher", "/api/v2/progress/blocks/5/overview?course_id=1")
	require.NoError(t, schema.Validate(payload))
}
