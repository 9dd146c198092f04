package service

import "errors"

// Sentinel errors separating the failure taxonomy the handlers branch on.
// "Not enrolled" must stay distinguishable from a generic lookup failure so
// the client can route to the enroll flow instead of a retry screen.
var (
	ErrNotFound     = errors.New("record not found")
	ErrNotEnrolled  = errors.New("student is not enrolled in this course")
	ErrForbidden    = errors.New("operation not permitted for this user")
	ErrInvalidInput = errors.New("invalid input")
)
