package service

import "errors"

var (
	// ErrStudentNotFound indicates the student number is unknown.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentExists indicates the student number is already registered.
	ErrStudentExists = errors.New("student already exists")
	// ErrActivityNotFound indicates the activity id is unknown.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidDimension indicates an aspect dimension outside the fixed set.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidAssessment indicates the assessment payload has the wrong shape for its type.
	ErrInvalidAssessment = errors.New("invalid assessment")
	// ErrAssessmentReference indicates the assessment points at a missing or foreign record.
	ErrAssessmentReference = errors.New("assessment references an unknown record")
	// ErrUserNotFound indicates the account is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates the username is already used.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrSelfDelete indicates an account tried to delete itself.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrLastSuperAdmin indicates the change would leave no super admin.
	ErrLastSuperAdmin = errors.New("at least one super admin must remain")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("Username atau password salah")
	// ErrInvalidBackup indicates a restore document failed validation.
	ErrInvalidBackup = errors.New("invalid backup document")
	// ErrPublicBackupDisabled indicates the unauthenticated export is switched off.
	ErrPublicBackupDisabled = errors.New("public backup is disabled")
	// ErrRestoreInProgress indicates a restore and a write overlapped.
	ErrRestoreInProgress = errors.New("a restore is in progress, retry later")
)
