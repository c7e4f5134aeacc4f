package util

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("permission denied")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")

	ErrNotEnrolled            = errors.New("not enrolled")
	ErrAlreadyEnrolled        = errors.New("already enrolled")
	ErrEnrollmentLimitReached = errors.New("Enrollment limit reached")
	ErrSelfEnrollDisabled     = errors.New("self-enrollment is disabled for this course")
	ErrCourseNotPublished     = errors.New("course is not published")

	ErrMaxAttemptsReached = errors.New("Maximum attempts for this test reached")
	ErrDuplicateCourse    = errors.New("course code already in use")
	ErrDuplicateMember    = errors.New("course already in learning plan")
	ErrInvalidOrder       = errors.New("order must be a non-negative integer")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotImplemented     = errors.New("export for this target is not yet implemented")
)
