package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"

	"gorm.io/gorm"
)

type AccessLevel int

const (
	LevelNone AccessLevel = iota
	LevelView
	LevelManage
)

// AccessTarget is anything access can be resolved against: a course or a
// learning plan.
type AccessTarget interface {
	OwnerID() uint
	IsPublic() bool
}

// courseTarget / planTarget adapt the models without widening their API.
type courseTarget struct{ *model.Course }

func (t courseTarget) OwnerID() uint  { return t.CreatedByID }
func (t courseTarget) IsPublic() bool { return t.PublicAccess }

type planTarget struct{ *model.LearningPlan }

func (t planTarget) OwnerID() uint  { return t.CreatedByID }
func (t planTarget) IsPublic() bool { return t.PublicAccess }

// grant is one independent access condition. Grants are evaluated in order
// with short-circuit OR semantics; any grant reaching the required level wins
// and later grants are never consulted.
type grant func(user *model.User, target AccessTarget) (AccessLevel, error)

type AccessService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	AssignmentRepo *repository.InstructorAssignmentRepository
	GroupRepo      *repository.GroupRepository
	PlanRepo       *repository.LearningPlanRepository

	grants         []grant
	enrolledGrants []grant // stricter chain for content/progress endpoints
}

func NewAccessService(
	enrollmentRepo *repository.EnrollmentRepository,
	assignmentRepo *repository.InstructorAssignmentRepository,
	groupRepo *repository.GroupRepository,
	planRepo *repository.LearningPlanRepository,
) *AccessService {
	s := &AccessService{
		EnrollmentRepo: enrollmentRepo,
		AssignmentRepo: assignmentRepo,
		GroupRepo:      groupRepo,
		PlanRepo:       planRepo,
	}

	s.grants = []grant{
		s.adminGrant,
		s.instructorViewGrant,
		s.creatorGrant,
		s.assignmentGrant,
		s.publicGrant,
		s.enrollmentGrant,
		s.planTransitiveGrant,
		s.groupGrant,
	}

	// The blanket instructor-view grant is deliberately absent here: viewing a
	// course's content or progress requires a concrete relationship to it.
	s.enrolledGrants = []grant{
		s.adminGrant,
		s.creatorGrant,
		s.assignmentGrant,
		s.publicGrant,
		s.enrollmentGrant,
		s.planTransitiveGrant,
		s.groupGrant,
	}

	return s
}

func (s *AccessService) adminGrant(user *model.User, _ AccessTarget) (AccessLevel, error) {
	if user.IsAdmin() {
		return LevelManage, nil
	}
	return LevelNone, nil
}

// Any instructor may view any course, test or question, but not manage it.
func (s *AccessService) instructorViewGrant(user *model.User, _ AccessTarget) (AccessLevel, error) {
	if user.IsInstructor() {
		return LevelView, nil
	}
	return LevelNone, nil
}

func (s *AccessService) creatorGrant(user *model.User, target AccessTarget) (AccessLevel, error) {
	if target.OwnerID() == user.ID {
		return LevelManage, nil
	}
	return LevelNone, nil
}

func (s *AccessService) assignmentGrant(user *model.User, target AccessTarget) (AccessLevel, error) {
	var (
		exists bool
		err    error
	)
	switch t := target.(type) {
	case courseTarget:
		exists, err = s.AssignmentRepo.ExistsForCourse(user.ID, t.Course.ID)
	case planTarget:
		exists, err = s.AssignmentRepo.ExistsForPlan(user.ID, t.LearningPlan.ID)
	}
	if err != nil {
		return LevelNone, err
	}
	if exists {
		return LevelManage, nil
	}
	return LevelNone, nil
}

func (s *AccessService) publicGrant(_ *model.User, target AccessTarget) (AccessLevel, error) {
	if target.IsPublic() {
		return LevelView, nil
	}
	return LevelNone, nil
}

func (s *AccessService) enrollmentGrant(user *model.User, target AccessTarget) (AccessLevel, error) {
	var err error
	switch t := target.(type) {
	case courseTarget:
		_, err = s.EnrollmentRepo.FindByUserAndCourse(user.ID, t.Course.ID)
	case planTarget:
		_, err = s.EnrollmentRepo.FindByUserAndPlan(user.ID, t.LearningPlan.ID)
	default:
		return LevelNone, nil
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LevelNone, nil
		}
		return LevelNone, err
	}
	return LevelView, nil
}

// planTransitiveGrant: a course is viewable when any learning plan containing
// it grants the user access (plan enrollment, plan publicAccess, plan group
// access, or plan ownership).
func (s *AccessService) planTransitiveGrant(user *model.User, target AccessTarget) (AccessLevel, error) {
	t, ok := target.(courseTarget)
	if !ok {
		return LevelNone, nil
	}

	plans, err := s.PlanRepo.ListPlansContainingCourse(t.Course.ID)
	if err != nil {
		return LevelNone, err
	}

	for i := range plans {
		plan := &plans[i]
		if plan.PublicAccess || plan.CreatedByID == user.ID {
			return LevelView, nil
		}
		if _, err := s.EnrollmentRepo.FindByUserAndPlan(user.ID, plan.ID); err == nil {
			return LevelView, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return LevelNone, err
		}
		hasGroup, err := s.GroupRepo.UserHasPlanAccess(user.ID, plan.ID)
		if err != nil {
			return LevelNone, err
		}
		if hasGroup {
			return LevelView, nil
		}
	}
	return LevelNone, nil
}

func (s *AccessService) groupGrant(user *model.User, target AccessTarget) (AccessLevel, error) {
	var (
		has bool
		err error
	)
	switch t := target.(type) {
	case courseTarget:
		has, err = s.GroupRepo.UserHasCourseAccess(user.ID, t.Course.ID)
	case planTarget:
		has, err = s.GroupRepo.UserHasPlanAccess(user.ID, t.LearningPlan.ID)
	}
	if err != nil {
		return LevelNone, err
	}
	if has {
		return LevelView, nil
	}
	return LevelNone, nil
}

func (s *AccessService) evaluate(chain []grant, user *model.User, target AccessTarget, required AccessLevel) (bool, error) {
	for _, g := range chain {
		level, err := g(user, target)
		if err != nil {
			return false, err
		}
		if level >= required {
			return true, nil
		}
	}
	return false, nil
}

// CanAccessCourse reports whether the user holds the required level on the
// course through any grant.
func (s *AccessService) CanAccessCourse(user *model.User, course *model.Course, required AccessLevel) (bool, error) {
	return s.evaluate(s.grants, user, courseTarget{course}, required)
}

func (s *AccessService) CanAccessPlan(user *model.User, plan *model.LearningPlan, required AccessLevel) (bool, error) {
	return s.evaluate(s.grants, user, planTarget{plan}, required)
}

// IsEnrolledOrHasAccess is the stricter check used by content and progress
// endpoints: being an instructor somewhere is not enough, the user needs a
// concrete relationship with this course.
func (s *AccessService) IsEnrolledOrHasAccess(user *model.User, course *model.Course) (bool, error) {
	return s.evaluate(s.enrolledGrants, user, courseTarget{course}, LevelView)
}

func (s *AccessService) IsEnrolledOrHasPlanAccess(user *model.User, plan *model.LearningPlan) (bool, error) {
	return s.evaluate(s.enrolledGrants, user, planTarget{plan}, LevelView)
}
