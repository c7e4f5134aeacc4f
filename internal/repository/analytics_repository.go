package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository holds the read-only aggregate queries that back the
// analytics endpoints. Everything returns zero values when no rows match.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *AnalyticsRepository) countByStatus(column string, id uint) (map[model.EnrollmentStatus]int64, error) {
	var rows []statusCount
	err := r.DB.Model(&model.Enrollment{}).
		Select("status, count(*) as count").
		Where(column+" = ?", id).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.EnrollmentStatus]int64, len(rows))
	for _, row := range rows {
		out[model.EnrollmentStatus(row.Status)] = row.Count
	}
	return out, nil
}

func (r *AnalyticsRepository) EnrollmentCountsByCourse(courseID uint) (map[model.EnrollmentStatus]int64, error) {
	return r.countByStatus("course_id", courseID)
}

func (r *AnalyticsRepository) EnrollmentCountsByPlan(planID uint) (map[model.EnrollmentStatus]int64, error) {
	return r.countByStatus("learning_plan_id", planID)
}

func (r *AnalyticsRepository) EnrollmentCountsByUser(userID uint) (map[model.EnrollmentStatus]int64, error) {
	return r.countByStatus("user_id", userID)
}

// AvgCompletionScoreByCourse averages the item-level completion scores of a
// course's content items. Rows without a score are excluded.
func (r *AnalyticsRepository) AvgCompletionScoreByCourse(courseID uint) (*float64, error) {
	var avg *float64
	err := r.DB.Model(&model.Completion{}).
		Select("avg(completions.score)").
		Joins("JOIN content_items ON content_items.id = completions.content_item_id").
		Where("content_items.course_id = ? AND completions.score IS NOT NULL", courseID).
		Scan(&avg).Error
	return avg, err
}

func (r *AnalyticsRepository) AvgAttemptScoreByTest(testID uint) (*float64, error) {
	var avg *float64
	err := r.DB.Model(&model.TestAttempt{}).
		Select("avg(score)").
		Where("test_id = ?", testID).
		Scan(&avg).Error
	return avg, err
}

func (r *AnalyticsRepository) AvgAttemptScoreByUser(userID uint) (*float64, error) {
	var avg *float64
	err := r.DB.Model(&model.TestAttempt{}).
		Select("avg(score)").
		Where("user_id = ?", userID).
		Scan(&avg).Error
	return avg, err
}

func (r *AnalyticsRepository) SumWatchTimeByCourse(courseID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&model.VideoProgress{}).
		Select("coalesce(sum(video_progress.watch_time), 0)").
		Joins("JOIN content_items ON content_items.id = video_progress.content_item_id").
		Where("content_items.course_id = ?", courseID).
		Scan(&total).Error
	return total, err
}

type certBadgeCounts struct {
	Certificates int64
	Badges       int64
}

func (r *AnalyticsRepository) certBadge(q *gorm.DB) (int64, int64, error) {
	var row certBadgeCounts
	err := q.Select(
		"count(case when certificate_url <> '' then 1 end) as certificates, " +
			"count(case when badge_awarded then 1 end) as badges").
		Scan(&row).Error
	return row.Certificates, row.Badges, err
}

func (r *AnalyticsRepository) CertBadgeCountsByCourse(courseID uint) (int64, int64, error) {
	return r.certBadge(r.DB.Model(&model.Completion{}).Where("course_id = ?", courseID))
}

func (r *AnalyticsRepository) CertBadgeCountsByPlan(planID uint) (int64, int64, error) {
	return r.certBadge(r.DB.Model(&model.Completion{}).Where("learning_plan_id = ?", planID))
}

func (r *AnalyticsRepository) CertBadgeCountsByUser(userID uint) (int64, int64, error) {
	return r.certBadge(r.DB.Model(&model.Completion{}).
		Where("user_id = ? AND (course_id IS NOT NULL OR learning_plan_id IS NOT NULL)", userID))
}

func (r *AnalyticsRepository) CountCompletionsByUser(userID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Completion{}).
		Where("user_id = ? AND content_item_id IS NOT NULL", userID).
		Count(&n).Error
	return n, err
}

func (r *AnalyticsRepository) CountPlanCompletions(planID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Completion{}).
		Where("learning_plan_id = ?", planID).
		Count(&n).Error
	return n, err
}

func (r *AnalyticsRepository) CountItemCompletionsByItem(contentItemID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Completion{}).
		Where("content_item_id = ?", contentItemID).
		Count(&n).Error
	return n, err
}
