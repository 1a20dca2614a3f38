package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/observability"
	"github.com/noah-isme/sikori-api/internal/repository"
)

const (
	reportCachePrefix   = "sikori:report:"
	dashboardCacheKey   = reportCachePrefix + "dashboard"
	activityCachePrefix = reportCachePrefix + "activity:"
	emptyScore          = "-"
)

// ReportInvalidator drops cached reports after writes.
type ReportInvalidator interface {
	InvalidateActivity(ctx context.Context, activityID string)
	InvalidateAll(ctx context.Context)
}

// ReportService builds the dashboard counters and activity recaps.
type ReportService interface {
	ReportInvalidator
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
	ActivityRecap(ctx context.Context, activityID, class string) (dto.ActivityReportResponse, error)
}

type reportService struct {
	students    repository.StudentRepository
	activities  repository.ActivityRepository
	assessments repository.AssessmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService builds the report aggregator. A nil cache disables caching.
func NewReportService(students repository.StudentRepository, activities repository.ActivityRepository, assessments repository.AssessmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		students:    students,
		activities:  activities,
		assessments: assessments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	var response dto.DashboardResponse
	if s.readCache(ctx, "dashboard", dashboardCacheKey, &response) {
		response.CacheHit = true
		return response, nil
	}

	students, err := s.students.Count(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	activities, err := s.activities.Count(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	assessed, err := s.assessments.CountAssessedStudents(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	classes, err := s.students.Classes(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response = dto.DashboardResponse{
		Students:         students,
		Activities:       activities,
		AssessedStudents: assessed,
		Classes:          classes,
		GeneratedAt:      s.now().UTC(),
	}
	s.writeCache(ctx, dashboardCacheKey, response)

	return response, nil
}

func (s *reportService) ActivityRecap(ctx context.Context, activityID, class string) (dto.ActivityReportResponse, error) {
	class = normalizeClassFilter(class)
	cacheKey := fmt.Sprintf("%s%s:%s", activityCachePrefix, activityID, strings.ToLower(class))

	var response dto.ActivityReportResponse
	if s.readCache(ctx, "activity", cacheKey, &response) {
		response.CacheHit = true
		return response, nil
	}

	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityReportResponse{}, ErrActivityNotFound
		}
		return dto.ActivityReportResponse{}, err
	}

	filter := repository.StudentFilter{}
	if class != "all" {
		filter.Class = class
	}
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}

	assessments, err := s.assessments.List(ctx, repository.AssessmentFilter{ActivityID: activityID})
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}

	response = buildRecap(activity, students, assessments)
	response.Class = class
	response.GeneratedAt = s.now().UTC()
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func buildRecap(activity models.Activity, students []models.Student, assessments []models.Assessment) dto.ActivityReportResponse {
	activityDTO := dto.NewActivityResponse(activity)

	byStudent := make(map[string][]models.Assessment)
	for _, assessment := range assessments {
		byStudent[assessment.StudentNISN] = append(byStudent[assessment.StudentNISN], assessment)
	}

	distribution := make(map[string]map[string]int, len(activity.SummativeAspects))
	for _, aspect := range activity.SummativeAspects {
		distribution[aspect.ID] = map[string]int{
			string(models.ScoreVeryGood):   0,
			string(models.ScoreGood):       0,
			string(models.ScoreSufficient): 0,
			string(models.ScorePoor):       0,
		}
	}

	rows := make([]dto.ReportRow, 0, len(students))
	for _, student := range students {
		if !activity.AppliesTo(student.Class) {
			continue
		}

		row := dto.ReportRow{
			No:     len(rows) + 1,
			NISN:   student.NISN,
			NIS:    student.NIS,
			Name:   student.Name,
			Class:  student.Class,
			Scores: make(map[string]string, len(activity.SummativeAspects)),
			Checks: make(map[string]bool, len(activity.FormativeItems)),
		}
		for _, aspect := range activity.SummativeAspects {
			row.Scores[aspect.ID] = emptyScore
		}
		for _, item := range activity.FormativeItems {
			row.Checks[item.ID] = false
		}

		for _, assessment := range byStudent[student.NISN] {
			switch assessment.Type {
			case models.AssessmentSummative:
				if assessment.AspectID == nil || assessment.Score == nil {
					continue
				}
				if _, known := row.Scores[*assessment.AspectID]; !known {
					continue
				}
				row.Scores[*assessment.AspectID] = string(*assessment.Score)
				distribution[*assessment.AspectID][string(*assessment.Score)]++
			case models.AssessmentFormative:
				if assessment.ItemID == nil || assessment.Checked == nil {
					continue
				}
				if _, known := row.Checks[*assessment.ItemID]; known {
					row.Checks[*assessment.ItemID] = *assessment.Checked
				}
			case models.AssessmentNote:
				if assessment.Note != nil {
					row.Note = *assessment.Note
				}
			}
		}

		rows = append(rows, row)
	}

	return dto.ActivityReportResponse{
		Activity: dto.ReportActivity{
			ID:            activityDTO.ID,
			Name:          activityDTO.Name,
			TargetClasses: activityDTO.TargetClasses,
		},
		Aspects:      activityDTO.SummativeAspects,
		Items:        activityDTO.FormativeItems,
		Rows:         rows,
		Distribution: distribution,
	}
}

func (s *reportService) InvalidateActivity(ctx context.Context, activityID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to drop dashboard cache")
	}
	s.deletePattern(ctx, activityCachePrefix+activityID+":*")
}

func (s *reportService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.deletePattern(ctx, reportCachePrefix+"*")
}

func (s *reportService) deletePattern(ctx context.Context, pattern string) {
	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Str("pattern", pattern).Msg("failed to scan report cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Str("pattern", pattern).Msg("failed to drop report cache")
	}
}

func (s *reportService) readCache(ctx context.Context, report, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read report cache")
		}
		observability.ReportCacheLookups().WithLabelValues(report, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		observability.ReportCacheLookups().WithLabelValues(report, "miss").Inc()
		return false
	}

	observability.ReportCacheLookups().WithLabelValues(report, "hit").Inc()
	s.logger.Debug().Str("key", key).Msg("report cache hit")
	return true
}

func (s *reportService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store report cache")
	}
}

func normalizeClassFilter(class string) string {
	class = strings.TrimSpace(class)
	if class == "" || strings.EqualFold(class, "all") {
		return "all"
	}
	return class
}
