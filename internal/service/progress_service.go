package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/middleware"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/progress"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

var (
	// ErrForbidden is returned when the viewer lacks the capability for a request.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRequest wraps malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

const defaultBlockTitle = "Progress Bar"

// ProgressService answers progress queries for progress blocks.
type ProgressService interface {
	GetSummary(ctx context.Context, req dto.ProgressSummaryRequest) (dto.ProgressSummaryResponse, error)
	ListBlocks(ctx context.Context, courseID uint) (dto.ProgressBlockListResponse, error)
	GetBar(ctx context.Context, req dto.ProgressBarRequest) (dto.ProgressBarResponse, error)
	GetOverview(ctx context.Context, req dto.ProgressOverviewRequest) (dto.ProgressOverviewResponse, error)
	RemapInstances(ctx context.Context, req dto.ProgressRemapRequest) (dto.ProgressRemapResponse, error)
}

// ProgressOptions carries site-wide presentation settings.
type ProgressOptions struct {
	Location        *time.Location
	WrapAfter       int
	DefaultLongBars progress.LongBars
	ShowInactive    bool
	Clock           func() time.Time
}

type progressService struct {
	blocks    repository.BlockRepository
	roster    repository.RosterRepository
	access    repository.AccessRepository
	selector  *progress.Selector
	evaluator *progress.Evaluator
	registry  progress.Registry
	publisher SummaryPublisher
	validator *validator.Validate
	options   ProgressOptions
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewProgressService wires the progress engine to its repositories.
func NewProgressService(
	blocks repository.BlockRepository,
	roster repository.RosterRepository,
	access repository.AccessRepository,
	catalog *progress.Catalog,
	evaluator *progress.Evaluator,
	publisher SummaryPublisher,
	validate *validator.Validate,
	options ProgressOptions,
	logger zerolog.Logger,
) ProgressService {
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.DefaultLongBars == "" {
		options.DefaultLongBars = progress.LongBarsSqueeze
	}
	if publisher == nil {
		publisher = NewSummaryPublisher(nil, nil, "")
	}

	return &progressService{
		blocks:    blocks,
		roster:    roster,
		access:    access,
		selector:  progress.NewSelector(catalog, access),
		evaluator: evaluator,
		registry:  catalog.Registry(),
		publisher: publisher,
		validator: validate,
		options:   options,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-progress-api/internal/service/progress"),
	}
}

func (s *progressService) now() time.Time {
	return s.options.Clock().In(s.options.Location)
}

// blockInCourse loads a block and rejects blocks placed in another course.
func (s *progressService) blockInCourse(ctx context.Context, blockID, courseID uint) (models.BlockInstance, error) {
	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return models.BlockInstance{}, err
	}
	if block.CourseID != courseID {
		return models.BlockInstance{}, progress.NewNotFound("block", blockID)
	}
	return block, nil
}

func (s *progressService) GetSummary(ctx context.Context, req dto.ProgressSummaryRequest) (dto.ProgressSummaryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressSummaryResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "progress.summary", trace.WithAttributes(
		attribute.Int64("progress.block_id", int64(req.BlockID)),
		attribute.Int64("progress.course_id", int64(req.CourseID)),
		attribute.Int64("progress.user_id", int64(req.UserID)),
	))
	defer span.End()
	started := time.Now()

	block, err := s.blockInCourse(ctx, req.BlockID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_block_failed")
		return dto.ProgressSummaryResponse{}, err
	}
	if _, err := s.roster.GetUser(ctx, req.UserID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_user_failed")
		return dto.ProgressSummaryResponse{}, err
	}

	cfg := progress.ParseBlockConfig(block.ConfigData)
	selection, err := s.selector.Select(ctx, cfg, req.CourseID, req.UserID, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select_events_failed")
		return dto.ProgressSummaryResponse{}, err
	}

	summary := progress.Summary{}
	if selection.Outcome == progress.OutcomeEvents {
		statuses, err := s.evaluator.EvaluateAll(ctx, req.CourseID, req.UserID, selection.Events)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "evaluate_failed")
			return dto.ProgressSummaryResponse{}, err
		}
		summary = progress.Summarize(selection.Events, statuses)
	}
	observability.SummaryDuration().Observe(time.Since(started).Seconds())

	response := dto.ProgressSummaryResponse{
		NumEvents:     summary.NumEvents,
		NumAttempts:   summary.NumAttempts,
		ProgressValue: summary.ProgressValue,
	}
	span.SetAttributes(
		attribute.String("progress.outcome", selection.Outcome.String()),
		attribute.Int("progress.numevents", response.NumEvents),
		attribute.Int("progress.value", response.ProgressValue),
	)

	event := dto.ProgressSummaryEvent{
		ID:            uuid.NewString(),
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		BlockID:       req.BlockID,
		CourseID:      req.CourseID,
		UserID:        req.UserID,
		Summary:       response,
		ComputedAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishSummary(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("block_id", req.BlockID).Msg("failed to publish progress summary")
	}

	return response, nil
}

func (s *progressService) ListBlocks(ctx context.Context, courseID uint) (dto.ProgressBlockListResponse, error) {
	if courseID == 0 {
		return dto.ProgressBlockListResponse{}, fmt.Errorf("%w: course id is required", ErrInvalidRequest)
	}

	blocks, err := s.blocks.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.ProgressBlockListResponse{}, err
	}

	ids := make([]uint, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID)
	}
	return dto.ProgressBlockListResponse{CourseID: courseID, Blocks: ids}, nil
}

func (s *progressService) barOptions(cfg progress.BlockConfig, capabilities map[string]bool, now time.Time) progress.BarOptions {
	return progress.BarOptions{
		Now:          now,
		OrderBy:      cfg.OrderBy,
		DisplayNow:   cfg.DisplayNow,
		LongBars:     progress.ParseLongBars(string(cfg.LongBars), s.options.DefaultLongBars),
		WrapAfter:    s.options.WrapAfter,
		Capabilities: capabilities,
	}
}

func (s *progressService) GetBar(ctx context.Context, req dto.ProgressBarRequest) (dto.ProgressBarResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressBarResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "progress.bar", trace.WithAttributes(
		attribute.Int64("progress.block_id", int64(req.BlockID)),
		attribute.Int64("progress.user_id", int64(req.UserID)),
	))
	defer span.End()

	block, err := s.blockInCourse(ctx, req.BlockID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		return dto.ProgressBarResponse{}, err
	}
	if _, err := s.roster.GetUser(ctx, req.UserID); err != nil {
		span.RecordError(err)
		return dto.ProgressBarResponse{}, err
	}

	capabilities, err := s.access.Capabilities(ctx, req.ViewerID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_capabilities_failed")
		return dto.ProgressBarResponse{}, err
	}
	if req.ViewerID != req.UserID && !capabilities[repository.CapabilityOverview] {
		return dto.ProgressBarResponse{}, ErrForbidden
	}

	cfg := progress.ParseBlockConfig(block.ConfigData)
	now := s.now()
	response := dto.ProgressBarResponse{
		BlockID:        req.BlockID,
		CourseID:       req.CourseID,
		UserID:         req.UserID,
		Title:          cfg.Title,
		ShowIcons:      cfg.ShowIcons,
		ShowPercentage: cfg.ShowPercentage,
	}
	if response.Title == "" {
		response.Title = defaultBlockTitle
	}

	selection, err := s.selector.Select(ctx, cfg, req.CourseID, req.UserID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select_events_failed")
		return dto.ProgressBarResponse{}, err
	}
	response.Outcome = selection.Outcome.String()
	if selection.Outcome != progress.OutcomeEvents {
		return response, nil
	}

	statuses, err := s.evaluator.EvaluateAll(ctx, req.CourseID, req.UserID, selection.Events)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluate_failed")
		return dto.ProgressBarResponse{}, err
	}

	bar := progress.BuildBar(s.registry, selection.Events, statuses, s.barOptions(cfg, capabilities, now))
	response.Bar = &bar
	return response, nil
}

func (s *progressService) GetOverview(ctx context.Context, req dto.ProgressOverviewRequest) (dto.ProgressOverviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressOverviewResponse{}, err
	}

	sortKeys, err := progress.ParseOverviewSort(req.Sort)
	if err != nil {
		return dto.ProgressOverviewResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	sortValue := req.Sort
	if sortValue == "" {
		sortValue = progress.DefaultOverviewSort
	}

	ctx, span := s.tracer.Start(ctx, "progress.overview", trace.WithAttributes(
		attribute.Int64("progress.block_id", int64(req.BlockID)),
		attribute.Int64("progress.course_id", int64(req.CourseID)),
		attribute.String("progress.sort", sortValue),
	))
	defer span.End()

	block, err := s.blockInCourse(ctx, req.BlockID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		return dto.ProgressOverviewResponse{}, err
	}

	capabilities, err := s.access.Capabilities(ctx, req.ViewerID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_capabilities_failed")
		return dto.ProgressOverviewResponse{}, err
	}
	if !capabilities[repository.CapabilityOverview] {
		return dto.ProgressOverviewResponse{}, ErrForbidden
	}

	cfg := progress.ParseBlockConfig(block.ConfigData)
	now := s.now()
	candidates, err := s.selector.Candidates(ctx, cfg, req.CourseID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select_events_failed")
		return dto.ProgressOverviewResponse{}, err
	}

	response := dto.ProgressOverviewResponse{
		BlockID:   req.BlockID,
		CourseID:  req.CourseID,
		Outcome:   candidates.Outcome.String(),
		NumEvents: len(candidates.Events),
		Sort:      sortValue,
		Rows:      []progress.OverviewRow{},
	}
	if candidates.Outcome != progress.OutcomeEvents {
		return response, nil
	}

	members, err := s.roster.ListStudents(ctx, repository.RosterFilter{
		CourseID:         req.CourseID,
		GroupID:          cfg.GroupID,
		IncludeSuspended: s.options.ShowInactive,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_roster_failed")
		return dto.ProgressOverviewResponse{}, err
	}

	options := s.barOptions(cfg, capabilities, now)
	for _, member := range members {
		started := time.Now()
		row, err := s.overviewRow(ctx, candidates, member, options)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "evaluate_failed")
			return dto.ProgressOverviewResponse{}, err
		}
		observability.SummaryDuration().Observe(time.Since(started).Seconds())
		response.Rows = append(response.Rows, row)
	}

	progress.SortBy(response.Rows, sortKeys...)
	span.SetAttributes(attribute.Int("progress.rows", len(response.Rows)))
	return response, nil
}

func (s *progressService) overviewRow(ctx context.Context, candidates progress.Selection, member models.User, options progress.BarOptions) (progress.OverviewRow, error) {
	row := progress.OverviewRow{
		UserID:    member.ID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
	}
	if member.LastAccess > 0 {
		row.LastAccess = time.Unix(member.LastAccess, 0).In(s.options.Location)
	}

	visible, err := s.selector.ForViewer(ctx, candidates, member.ID, options.Now)
	if err != nil {
		return progress.OverviewRow{}, err
	}
	if visible.Outcome != progress.OutcomeEvents {
		row.Bar = progress.BuildBar(s.registry, nil, nil, options)
		return row, nil
	}

	statuses, err := s.evaluator.EvaluateAll(ctx, candidates.Course.ID, member.ID, visible.Events)
	if err != nil {
		return progress.OverviewRow{}, fmt.Errorf("evaluate user %d: %w", member.ID, err)
	}
	row.Bar = progress.BuildBar(s.registry, visible.Events, statuses, options)
	row.Progress = row.Bar.Percentage
	return row, nil
}

func (s *progressService) RemapInstances(ctx context.Context, req dto.ProgressRemapRequest) (dto.ProgressRemapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressRemapResponse{}, err
	}

	block, err := s.blocks.GetByID(ctx, req.BlockID)
	if err != nil {
		return dto.ProgressRemapResponse{}, err
	}

	updated, moved := progress.RemapInstances(block.ConfigData, progress.InstanceMapping(req.Mapping))
	if moved == 0 {
		return dto.ProgressRemapResponse{BlockID: req.BlockID}, nil
	}
	if err := s.blocks.UpdateConfig(ctx, req.BlockID, updated); err != nil {
		return dto.ProgressRemapResponse{}, err
	}

	s.logger.Info().Uint("block_id", req.BlockID).Int("moved", moved).Msg("remapped progress block instances")
	return dto.ProgressRemapResponse{BlockID: req.BlockID, Moved: moved}, nil
}
