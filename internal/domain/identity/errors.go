package identity

import "errors"

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)
