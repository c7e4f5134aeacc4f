package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const analyticsCacheTTL = 2 * time.Minute

type EnrollmentCounts struct {
	Enrolled        int64 `json:"enrolled"`
	InProgress      int64 `json:"inProgress"`
	PendingApproval int64 `json:"pendingApproval"`
	Completed       int64 `json:"completed"`
	Total           int64 `json:"total"`
}

type UserAnalytics struct {
	UserID            uint             `json:"userId"`
	Enrollments       EnrollmentCounts `json:"enrollments"`
	ItemsCompleted    int64            `json:"itemsCompleted"`
	Certificates      int64            `json:"certificates"`
	Badges            int64            `json:"badges"`
	AverageScore      int              `json:"averageScore"` // 0..100
	TotalWatchMinutes int              `json:"totalWatchMinutes"`
}

type VideoAnalytics struct {
	ContentItemID     uint `json:"contentItemId"`
	Viewers           int  `json:"viewers"`
	Completions       int  `json:"completions"`
	AverageWatched    int  `json:"averageWatched"` // percent 0..100
	TotalWatchMinutes int  `json:"totalWatchMinutes"`
}

type CourseAnalytics struct {
	CourseID          uint             `json:"courseId"`
	Enrollments       EnrollmentCounts `json:"enrollments"`
	Completions       int64            `json:"completions"`
	Certificates      int64            `json:"certificates"`
	Badges            int64            `json:"badges"`
	AverageScore      int              `json:"averageScore"`
	TotalWatchMinutes int              `json:"totalWatchMinutes"`
}

type QuestionPerformance struct {
	QuestionID      uint    `json:"questionId"`
	Attempts        int     `json:"attempts"`
	Correct         int     `json:"correct"`
	FractionCorrect float64 `json:"fractionCorrect"`
}

type TestAnalytics struct {
	TestID            uint                  `json:"testId"`
	Attempts          int                   `json:"attempts"`
	UniqueTakers      int                   `json:"uniqueTakers"`
	AverageScore      int                   `json:"averageScore"`
	PassRate          int                   `json:"passRate"` // percent 0..100
	ScoreDistribution map[string]int        `json:"scoreDistribution"`
	Questions         []QuestionPerformance `json:"questions"`
}

type PlanAnalytics struct {
	LearningPlanID uint             `json:"learningPlanId"`
	Courses        int              `json:"courses"`
	Enrollments    EnrollmentCounts `json:"enrollments"`
	Completions    int64            `json:"completions"`
	Certificates   int64            `json:"certificates"`
	Badges         int64            `json:"badges"`
}

type ExportRequest struct {
	Type     string `json:"type" binding:"required"`
	EntityID uint   `json:"entityId" binding:"required"`
	Format   string `json:"format"`
}

type AnalyticsService struct {
	AnalyticsRepo  *repository.AnalyticsRepository
	EnrollRepo     *repository.EnrollmentRepository
	CompletionRepo *repository.CompletionRepository
	VideoRepo      *repository.VideoProgressRepository
	AttemptRepo    *repository.AttemptRepository
	TestRepo       *repository.TestRepository
	PlanRepo       *repository.LearningPlanRepository
	UserRepo       *repository.UserRepository
	Redis          *redis.Client
}

func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	enrollRepo *repository.EnrollmentRepository,
	completionRepo *repository.CompletionRepository,
	videoRepo *repository.VideoProgressRepository,
	attemptRepo *repository.AttemptRepository,
	testRepo *repository.TestRepository,
	planRepo *repository.LearningPlanRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsRepo:  analyticsRepo,
		EnrollRepo:     enrollRepo,
		CompletionRepo: completionRepo,
		VideoRepo:      videoRepo,
		AttemptRepo:    attemptRepo,
		TestRepo:       testRepo,
		PlanRepo:       planRepo,
		UserRepo:       userRepo,
		Redis:          rdb,
	}
}

// cached wraps a rollup computation with a best-effort redis read-through.
// A cache failure never fails the request.
func cached[T any](s *AnalyticsService, ctx context.Context, key string, compute func() (T, error)) (T, error) {
	var zero T
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var out T
			if json.Unmarshal([]byte(raw), &out) == nil {
				return out, nil
			}
		}
	}
	out, err := compute()
	if err != nil {
		return zero, err
	}
	if s.Redis != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.Redis.Set(ctx, key, raw, analyticsCacheTTL).Err(); err != nil {
				logger.Log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

func toCounts(m map[model.EnrollmentStatus]int64) EnrollmentCounts {
	c := EnrollmentCounts{
		Enrolled:        m[model.EnrollmentEnrolled],
		InProgress:      m[model.EnrollmentInProgress],
		PendingApproval: m[model.EnrollmentPendingApproval],
		Completed:       m[model.EnrollmentCompleted],
	}
	c.Total = c.Enrolled + c.InProgress + c.PendingApproval + c.Completed
	return c
}

func percentOf(avg *float64) int {
	if avg == nil {
		return 0
	}
	return int(math.Round(*avg * 100))
}

func minutesOf(seconds float64) int {
	return int(seconds / 60)
}

func (s *AnalyticsService) ForUser(ctx context.Context, userID uint) (UserAnalytics, error) {
	return cached(s, ctx, fmt.Sprintf("analytics:user:%d", userID), func() (UserAnalytics, error) {
		out := UserAnalytics{UserID: userID}

		counts, err := s.AnalyticsRepo.EnrollmentCountsByUser(userID)
		if err != nil {
			return out, err
		}
		out.Enrollments = toCounts(counts)

		if out.ItemsCompleted, err = s.AnalyticsRepo.CountCompletionsByUser(userID); err != nil {
			return out, err
		}
		if out.Certificates, out.Badges, err = s.AnalyticsRepo.CertBadgeCountsByUser(userID); err != nil {
			return out, err
		}
		avg, err := s.AnalyticsRepo.AvgAttemptScoreByUser(userID)
		if err != nil {
			return out, err
		}
		out.AverageScore = percentOf(avg)

		watch, err := s.VideoRepo.SumWatchTimeByUser(userID)
		if err != nil {
			return out, err
		}
		out.TotalWatchMinutes = minutesOf(watch)
		return out, nil
	})
}

func (s *AnalyticsService) ForVideo(ctx context.Context, contentItemID uint) (VideoAnalytics, error) {
	return cached(s, ctx, fmt.Sprintf("analytics:video:%d", contentItemID), func() (VideoAnalytics, error) {
		out := VideoAnalytics{ContentItemID: contentItemID}

		rows, err := s.VideoRepo.ListByItem(contentItemID)
		if err != nil {
			return out, err
		}
		out.Viewers = len(rows)
		var totalWatch, totalFraction float64
		for _, vp := range rows {
			totalWatch += vp.WatchTime
			totalFraction += vp.Fraction()
			if vp.Completed {
				out.Completions++
			}
		}
		out.TotalWatchMinutes = minutesOf(totalWatch)
		if len(rows) > 0 {
			out.AverageWatched = int(math.Round(totalFraction / float64(len(rows)) * 100))
		}
		return out, nil
	})
}

func (s *AnalyticsService) ForCourse(ctx context.Context, courseID uint) (CourseAnalytics, error) {
	return cached(s, ctx, fmt.Sprintf("analytics:course:%d", courseID), func() (CourseAnalytics, error) {
		out := CourseAnalytics{CourseID: courseID}

		counts, err := s.AnalyticsRepo.EnrollmentCountsByCourse(courseID)
		if err != nil {
			return out, err
		}
		out.Enrollments = toCounts(counts)

		if out.Completions, err = s.CompletionRepo.CountCourseCompletions(courseID); err != nil {
			return out, err
		}
		if out.Certificates, out.Badges, err = s.AnalyticsRepo.CertBadgeCountsByCourse(courseID); err != nil {
			return out, err
		}
		avg, err := s.AnalyticsRepo.AvgCompletionScoreByCourse(courseID)
		if err != nil {
			return out, err
		}
		out.AverageScore = percentOf(avg)

		watch, err := s.AnalyticsRepo.SumWatchTimeByCourse(courseID)
		if err != nil {
			return out, err
		}
		out.TotalWatchMinutes = minutesOf(watch)
		return out, nil
	})
}

var scoreBuckets = []string{"0-19", "20-39", "40-59", "60-79", "80-100"}

func bucketFor(score float64) string {
	pct := int(math.Round(score * 100))
	switch {
	case pct < 20:
		return scoreBuckets[0]
	case pct < 40:
		return scoreBuckets[1]
	case pct < 60:
		return scoreBuckets[2]
	case pct < 80:
		return scoreBuckets[3]
	default:
		return scoreBuckets[4]
	}
}

func (s *AnalyticsService) ForTest(ctx context.Context, testID uint) (TestAnalytics, error) {
	return cached(s, ctx, fmt.Sprintf("analytics:test:%d", testID), func() (TestAnalytics, error) {
		out := TestAnalytics{TestID: testID, ScoreDistribution: map[string]int{}}
		for _, b := range scoreBuckets {
			out.ScoreDistribution[b] = 0
		}

		attempts, err := s.AttemptRepo.ListByTest(testID)
		if err != nil {
			return out, err
		}
		out.Attempts = len(attempts)

		takers := map[uint]struct{}{}
		var sum float64
		passed := 0
		for _, a := range attempts {
			takers[a.UserID] = struct{}{}
			sum += a.Score
			if a.Passed {
				passed++
			}
			out.ScoreDistribution[bucketFor(a.Score)]++
		}
		out.UniqueTakers = len(takers)
		if len(attempts) > 0 {
			out.AverageScore = int(math.Round(sum / float64(len(attempts)) * 100))
			out.PassRate = int(math.Round(float64(passed) / float64(len(attempts)) * 100))
		}

		answers, err := s.AttemptRepo.ListAnswersByTest(testID)
		if err != nil {
			return out, err
		}
		perQuestion := map[uint]*QuestionPerformance{}
		var order []uint
		for _, ans := range answers {
			qp, ok := perQuestion[ans.QuestionID]
			if !ok {
				qp = &QuestionPerformance{QuestionID: ans.QuestionID}
				perQuestion[ans.QuestionID] = qp
				order = append(order, ans.QuestionID)
			}
			qp.Attempts++
			if ans.IsCorrect {
				qp.Correct++
			}
		}
		for _, id := range order {
			qp := perQuestion[id]
			qp.FractionCorrect = float64(qp.Correct) / float64(qp.Attempts)
			out.Questions = append(out.Questions, *qp)
		}
		return out, nil
	})
}

func (s *AnalyticsService) ForPlan(ctx context.Context, planID uint) (PlanAnalytics, error) {
	return cached(s, ctx, fmt.Sprintf("analytics:plan:%d", planID), func() (PlanAnalytics, error) {
		out := PlanAnalytics{LearningPlanID: planID}

		rows, err := s.PlanRepo.ListCourses(planID)
		if err != nil {
			return out, err
		}
		out.Courses = len(rows)

		counts, err := s.AnalyticsRepo.EnrollmentCountsByPlan(planID)
		if err != nil {
			return out, err
		}
		out.Enrollments = toCounts(counts)

		if out.Completions, err = s.AnalyticsRepo.CountPlanCompletions(planID); err != nil {
			return out, err
		}
		if out.Certificates, out.Badges, err = s.AnalyticsRepo.CertBadgeCountsByPlan(planID); err != nil {
			return out, err
		}
		return out, nil
	})
}

// ValidateExportTarget reports whether the requested export is supported.
// Only COURSE targets are exportable; LEARNING_PLAN and TEST are a stable
// 400 until they ship.
func ValidateExportTarget(req ExportRequest) error {
	switch strings.ToUpper(req.Type) {
	case "COURSE":
	case "LEARNING_PLAN", "TEST":
		return util.ErrNotImplemented
	default:
		return util.ErrInvalidRequest
	}
	if req.Format != "" && !strings.EqualFold(req.Format, "CSV") {
		return util.ErrInvalidRequest
	}
	return nil
}

// ExportCSV renders a per-learner roster for a course.
func (s *AnalyticsService) ExportCSV(req ExportRequest) ([]byte, string, error) {
	if err := ValidateExportTarget(req); err != nil {
		return nil, "", err
	}

	enrollments, err := s.EnrollRepo.ListByCourse(req.EntityID)
	if err != nil {
		return nil, "", err
	}
	completions, err := s.CompletionRepo.ListCourseCompletions(req.EntityID)
	if err != nil {
		return nil, "", err
	}
	byUser := make(map[uint]*model.Completion, len(completions))
	for i := range completions {
		byUser[completions[i].UserID] = &completions[i]
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"user_id", "status", "completed", "score", "certificate_url", "badge_awarded"})
	for _, e := range enrollments {
		record := []string{
			strconv.FormatUint(uint64(e.UserID), 10),
			string(e.Status),
			"false", "", "", "false",
		}
		if c, ok := byUser[e.UserID]; ok {
			record[2] = "true"
			if c.Score != nil {
				record[3] = strconv.FormatFloat(*c.Score, 'f', 2, 64)
			}
			record[4] = c.CertificateURL
			record[5] = strconv.FormatBool(c.BadgeAwarded)
		}
		w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("course_%d_analytics.csv", req.EntityID)
	return buf.Bytes(), filename, nil
}
