package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotEnrolled          = errors.New("student not enrolled in course")
	ErrContentNotFound      = errors.New("test or assignment not found")
	ErrTestNotPublished     = errors.New("test not published or not accessible")
	ErrTestAlreadySubmitted = errors.New("test already submitted")
	ErrSessionNotFound      = errors.New("test session not found")
	ErrInvalidTimeRange     = errors.New("invalid time range")
	ErrInvalidQuestion      = errors.New("question definition is malformed")
)
