package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// videoCompleteThreshold is the watched fraction at which a video item counts
// as finished even without an explicit completed flag from the player.
const videoCompleteThreshold = 0.95

type ItemProgress struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Completed bool    `json:"completed"`
	Progress  float64 `json:"progress"` // 0..1
	Unlocked  bool    `json:"unlocked"`
}

type CourseProgress struct {
	CourseID        uint           `json:"courseId"`
	ProgressPercent int            `json:"progressPercent"` // 0..100
	CompletedItems  int            `json:"completedItems"`
	TotalItems      int            `json:"totalItems"`
	Items           []ItemProgress `json:"items"`
}

type CompletionResult struct {
	Completed      bool    `json:"completed"`
	Progress       int     `json:"progress"`
	CompletionID   *uint   `json:"completionId,omitempty"`
	CertificateURL *string `json:"certificateUrl,omitempty"`
	BadgeAwarded   bool    `json:"badgeAwarded"`
}

// ProgressService is the completion/unlock engine: it derives per-item state
// from completion and video-progress rows and owns the course-level
// completion lifecycle.
type ProgressService struct {
	ContentItemRepo *repository.ContentItemRepository
	CompletionRepo  *repository.CompletionRepository
	VideoRepo       *repository.VideoProgressRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	Storage         *StorageService
	DB              *gorm.DB
}

func NewProgressService(
	contentItemRepo *repository.ContentItemRepository,
	completionRepo *repository.CompletionRepository,
	videoRepo *repository.VideoProgressRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	storage *StorageService,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		ContentItemRepo: contentItemRepo,
		CompletionRepo:  completionRepo,
		VideoRepo:       videoRepo,
		EnrollmentRepo:  enrollmentRepo,
		Storage:         storage,
		DB:              db,
	}
}

// ComputeCourseProgress walks the course's items in sequence order and derives
// completed/progress/unlocked for each, plus the overall percentage. An item
// is completed precisely when its completion row exists.
func (s *ProgressService) ComputeCourseProgress(course *model.Course, userID uint) (*CourseProgress, error) {
	items, err := s.ContentItemRepo.ListByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uint, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	completions, err := s.CompletionRepo.ListItemCompletions(userID, itemIDs)
	if err != nil {
		return nil, err
	}
	videoProgress, err := s.VideoRepo.ListByUserAndItems(userID, itemIDs)
	if err != nil {
		return nil, err
	}

	completedByOrder := make(map[int]bool, len(items))
	for _, item := range items {
		if _, ok := completions[item.ID]; ok {
			completedByOrder[item.Order] = true
		}
	}

	lowestOrder := 0
	if len(items) > 0 {
		lowestOrder = items[0].Order
	}

	result := &CourseProgress{
		CourseID:   course.ID,
		TotalItems: len(items),
		Items:      make([]ItemProgress, 0, len(items)),
	}

	for _, item := range items {
		_, completed := completions[item.ID]

		progress := 0.0
		if completed {
			progress = 1.0
		} else if item.Type == model.ContentVideo {
			if vp, ok := videoProgress[item.ID]; ok {
				progress = vp.Fraction()
			}
		}

		unlocked := true
		switch {
		case len(item.Prerequisites) > 0:
			for _, prereqID := range item.Prerequisites {
				if _, done := completions[prereqID]; !done {
					unlocked = false
					break
				}
			}
		case course.SequentialRequired && item.Order != lowestOrder:
			unlocked = completedByOrder[item.Order-1]
		}

		if completed {
			result.CompletedItems++
		}

		result.Items = append(result.Items, ItemProgress{
			ID:        item.ID,
			Title:     item.Title,
			Type:      string(item.Type),
			Completed: completed,
			Progress:  progress,
			Unlocked:  unlocked,
		})
	}

	if result.TotalItems == 0 {
		// An empty course is vacuously complete.
		result.ProgressPercent = 100
	} else {
		result.ProgressPercent = int(math.Round(100 * float64(result.CompletedItems) / float64(result.TotalItems)))
	}

	return result, nil
}

// MarkItemCompleted records an item-level completion (non-test items: a
// document read, a video finished, an external link visited) and re-checks
// course completion.
func (s *ProgressService) MarkItemCompleted(course *model.Course, item *model.ContentItem, userID uint, score *float64) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.CompletionRepo.UpsertItemCompletion(tx, userID, item.ID, score); err != nil {
			return err
		}
		// First recorded progress moves a fresh enrollment along.
		return tx.Model(&model.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND status = ?", userID, course.ID, model.EnrollmentEnrolled).
			Update("status", model.EnrollmentInProgress).Error
	})
	if err != nil {
		return err
	}
	_, err = s.CheckAndCompleteCourse(course, userID)
	return err
}

// UpsertItemCompletionTx is the grading engine's entry point: it runs inside
// the submission transaction. The latest graded submission's score overwrites
// any previous one.
func (s *ProgressService) UpsertItemCompletionTx(tx *gorm.DB, userID, contentItemID uint, score *float64) error {
	return s.CompletionRepo.UpsertItemCompletion(tx, userID, contentItemID, score)
}

// CheckAndCompleteCourse creates the course-level completion once all items
// are done (vacuously true for an empty course). Calling it again with no new
// progress is a no-op: the unique (user, course) row is upserted, never
// duplicated.
func (s *ProgressService) CheckAndCompleteCourse(course *model.Course, userID uint) (*CompletionResult, error) {
	progress, err := s.ComputeCourseProgress(course, userID)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{Progress: progress.ProgressPercent}
	if progress.CompletedItems != progress.TotalItems {
		return result, nil
	}
	result.Completed = true

	existing, err := s.CompletionRepo.FindCourseCompletion(userID, course.ID)
	if err == nil {
		result.CompletionID = &existing.ID
		if existing.CertificateURL != "" {
			result.CertificateURL = &existing.CertificateURL
		}
		result.BadgeAwarded = existing.BadgeAwarded
		return result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	completion := &model.Completion{
		UserID:       userID,
		CourseID:     &course.ID,
		BadgeAwarded: course.HasBadge,
	}
	now := time.Now()
	completion.CompletedAt = &now
	completion.Score = s.averageItemScore(userID, progress)

	if course.HasCertificate {
		completion.CertificateURL = s.issueCertificate(course, userID)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.CompletionRepo.UpsertCourseCompletion(tx, completion); err != nil {
			return err
		}
		enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, course.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Model(&model.Enrollment{}).Where("id = ?", enrollment.ID).
			Update("status", model.EnrollmentCompleted).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.CourseCompletions.Inc()

	result.CompletionID = &completion.ID
	if completion.CertificateURL != "" {
		result.CertificateURL = &completion.CertificateURL
	}
	result.BadgeAwarded = completion.BadgeAwarded
	return result, nil
}

// averageItemScore averages the scores of the user's graded item completions
// in this course, nil when none carry a score.
func (s *ProgressService) averageItemScore(userID uint, progress *CourseProgress) *float64 {
	itemIDs := make([]uint, 0, len(progress.Items))
	for _, item := range progress.Items {
		itemIDs = append(itemIDs, item.ID)
	}
	completions, err := s.CompletionRepo.ListItemCompletions(userID, itemIDs)
	if err != nil {
		return nil
	}

	var sum float64
	var n int
	for _, c := range completions {
		if c.Score != nil {
			sum += *c.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func (s *ProgressService) issueCertificate(course *model.Course, userID uint) string {
	name := fmt.Sprintf("certificates/%s.html", model.GenerateUUID())
	if s.Storage == nil {
		return "/" + name
	}
	url, err := s.Storage.UploadCertificate(name, course.Title, userID)
	if err != nil {
		logger.Log.Error("certificate upload failed",
			zap.Uint("userID", userID), zap.Uint("courseID", course.ID), zap.Error(err))
		return "/" + name
	}
	return url
}

type VideoHeartbeat struct {
	WatchTime     float64 `json:"watchTime" binding:"min=0"`
	TotalDuration float64 `json:"totalDuration" binding:"min=0"`
	LastPosition  float64 `json:"lastPosition" binding:"min=0"`
	Completed     bool    `json:"completed"`
	Rewatch       bool    `json:"rewatch"`
}

// RecordVideoProgress upserts the (user, item) playback row and promotes the
// item to completed once the watched fraction crosses the threshold or the
// player reports the end.
func (s *ProgressService) RecordVideoProgress(course *model.Course, item *model.ContentItem, userID uint, hb VideoHeartbeat) (*model.VideoProgress, error) {
	if item.Type != model.ContentVideo {
		return nil, fmt.Errorf("content item %d is not a video", item.ID)
	}

	vp, err := s.VideoRepo.FindByUserAndItem(userID, item.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		vp = &model.VideoProgress{
			UserID:        userID,
			ContentItemID: item.ID,
			TimesWatched:  1,
		}
	} else if hb.Rewatch {
		vp.TimesWatched++
	}

	if hb.WatchTime > vp.WatchTime {
		vp.WatchTime = hb.WatchTime
	}
	vp.LastPosition = hb.LastPosition
	if hb.TotalDuration > 0 {
		vp.TotalDuration = hb.TotalDuration
	} else if vp.TotalDuration == 0 {
		vp.TotalDuration = item.Duration
	}

	if hb.Completed || vp.Fraction() >= videoCompleteThreshold {
		vp.Completed = true
	}

	if err := s.VideoRepo.Upsert(vp); err != nil {
		return nil, err
	}

	if vp.Completed {
		if err := s.MarkItemCompleted(course, item, userID, nil); err != nil {
			return nil, err
		}
	}
	return vp, nil
}
