package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/progress"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

type stubProgressService struct {
	summary     dto.ProgressSummaryResponse
	blocks      dto.ProgressBlockListResponse
	bar         dto.ProgressBarResponse
	overview    dto.ProgressOverviewResponse
	remap       dto.ProgressRemapResponse
	err         error
	lastSummary dto.ProgressSummaryRequest
	lastBar     dto.ProgressBarRequest
	lastView    dto.ProgressOverviewRequest
	lastRemap   dto.ProgressRemapRequest
}

func (s *stubProgressService) GetSummary(_ context.Context, req dto.ProgressSummaryRequest) (dto.ProgressSummaryResponse, error) {
	s.lastSummary = req
	return s.summary, s.err
}

func (s *stubProgressService) ListBlocks(_ context.Context, courseID uint) (dto.ProgressBlockListResponse, error) {
	return s.blocks, s.err
}

func (s *stubProgressService) GetBar(_ context.Context, req dto.ProgressBarRequest) (dto.ProgressBarResponse, error) {
	s.lastBar = req
	return s.bar, s.err
}

func (s *stubProgressService) GetOverview(_ context.Context, req dto.ProgressOverviewRequest) (dto.ProgressOverviewResponse, error) {
	s.lastView = req
	return s.overview, s.err
}

func (s *stubProgressService) RemapInstances(_ context.Context, req dto.ProgressRemapRequest) (dto.ProgressRemapResponse, error) {
	s.lastRemap = req
	return s.remap, s.err
}

func newProgressApp(svc service.ProgressService, userID uint, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID > 0 {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	handler.NewProgressHandler(svc, zerolog.Nop()).Register(app.Group("/api/v2/progress"))
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestProgressHandlerGetSummary(t *testing.T) {
	svc := &stubProgressService{summary: dto.ProgressSummaryResponse{NumEvents: 3, NumAttempts: 2, ProgressValue: 67}}
	app := newProgressApp(svc, 7, "student")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/summary?course_id=1&user_id=8", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, dto.ProgressSummaryRequest{BlockID: 5, CourseID: 1, UserID: 8}, svc.lastSummary)

	payload := decodeEnvelope(t, resp)
	data := payload["data"].(map[string]interface{})
	require.Equal(t, float64(67), data["progressvalue"])
	require.Equal(t, float64(3), data["numevents"])
}

func TestProgressHandlerSummaryDefaultsToCaller(t *testing.T) {
	svc := &stubProgressService{}
	app := newProgressApp(svc, 7, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/summary?course_id=1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastSummary.UserID)
}

func TestProgressHandlerMapsErrors(t *testing.T) {
	validationErr := validator.New().Struct(dto.ProgressSummaryRequest{})
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: progress.NewNotFound("block", 5), status: http.StatusNotFound},
		{name: "configuration", err: &progress.ConfigurationError{Reason: "broken"}, status: http.StatusInternalServerError},
		{name: "validation", err: validationErr, status: http.StatusBadRequest},
		{name: "forbidden", err: service.ErrForbidden, status: http.StatusForbidden},
		{name: "invalid", err: service.ErrInvalidRequest, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProgressApp(&stubProgressService{err: tc.err}, 7, "student")
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/summary?course_id=1", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, false, decodeEnvelope(t, resp)["success"])
		})
	}
}

func TestProgressHandlerValidationDetails(t *testing.T) {
	validationErr := validator.New().Struct(dto.ProgressSummaryRequest{BlockID: 5, UserID: 7})
	app := newProgressApp(&stubProgressService{err: validationErr}, 7, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/summary", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	details := decodeEnvelope(t, resp)["details"].(map[string]interface{})
	require.Equal(t, "required", details["course_id"])
}

func TestProgressHandlerRejectsBadIdentifiers(t *testing.T) {
	app := newProgressApp(&stubProgressService{}, 7, "student")

	for _, target := range []string{
		"/api/v2/progress/blocks/abc/summary?course_id=1",
		"/api/v2/progress/blocks/5/summary?course_id=x",
		"/api/v2/progress/courses/0/blocks",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestProgressHandlerListBlocks(t *testing.T) {
	svc := &stubProgressService{blocks: dto.ProgressBlockListResponse{CourseID: 1, Blocks: []uint{6, 5}}}
	app := newProgressApp(svc, 7, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/courses/1/blocks", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	require.Equal(t, []interface{}{float64(6), float64(5)}, data["blocks"])
}

func TestProgressHandlerGetBarUsesViewer(t *testing.T) {
	svc := &stubProgressService{bar: dto.ProgressBarResponse{Outcome: "empty", Title: "Progress Bar"}}
	app := newProgressApp(svc, 9, "teacher")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/bar?course_id=1&user_id=7", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, dto.ProgressBarRequest{BlockID: 5, CourseID: 1, UserID: 7, ViewerID: 9}, svc.lastBar)
}

func TestProgressHandlerOverviewRequiresStaff(t *testing.T) {
	svc := &stubProgressService{overview: dto.ProgressOverviewResponse{Sort: "progress desc", Outcome: "events", Rows: []progress.OverviewRow{{UserID: 7, Progress: 67}}}}

	student := newProgressApp(svc, 7, "student")
	resp, err := student.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/overview?course_id=1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	teacher := newProgressApp(svc, 9, "editingteacher")
	resp, err = teacher.Test(httptest.NewRequest(http.MethodGet, "/api/v2/progress/blocks/5/overview?course_id=1&sort=progress+desc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "progress desc", svc.lastView.Sort)
	require.Equal(t, uint(9), svc.lastView.ViewerID)

	payload := decodeEnvelope(t, resp)
	meta := payload["meta"].(map[string]interface{})
	require.Equal(t, "progress desc", meta["sort"])
	require.Len(t, payload["data"], 1)
}

func TestProgressHandlerRemap(t *testing.T) {
	svc := &stubProgressService{remap: dto.ProgressRemapResponse{BlockID: 5, Moved: 1}}

	teacher := newProgressApp(svc, 9, "teacher")
	req := httptest.NewRequest(http.MethodPost, "/api/v2/progress/blocks/5/remap", strings.NewReader(`{"mapping":{"quiz1":4}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := teacher.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := newProgressApp(svc, 1, "admin")
	req = httptest.NewRequest(http.MethodPost, "/api/v2/progress/blocks/5/remap", strings.NewReader(`{"mapping":{"quiz1":4}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = admin.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastRemap.BlockID)
	require.Equal(t, map[string]uint{"quiz1": 4}, svc.lastRemap.Mapping)
}
