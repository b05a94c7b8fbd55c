package service

import "zerobarrier/internal/apperr"

var (
	ErrMissingFields         = apperr.New(apperr.KindValidation, "missing_fields", "All required fields must be provided")
	ErrMissingCredentials    = apperr.New(apperr.KindValidation, "missing_credentials", "Email and password are required")
	ErrMissingPasswords      = apperr.New(apperr.KindValidation, "missing_passwords", "Current password and new password are required")
	ErrMissingVerification   = apperr.New(apperr.KindValidation, "missing_verification", "Email and token are required")
	ErrMissingCompanyFields  = apperr.New(apperr.KindValidation, "missing_company_fields", "Required fields are missing")
	ErrInvalidEmail          = apperr.New(apperr.KindValidation, "invalid_email", "Invalid email address")
	ErrWeakPassword          = apperr.New(apperr.KindValidation, "weak_password", "Password must be at least 6 characters long")
	ErrPasswordTooLong       = apperr.New(apperr.KindValidation, "password_too_long", "Password must be at most 72 bytes long")
	ErrWrongCurrentPassword  = apperr.New(apperr.KindValidation, "wrong_current_password", "Current password is incorrect")
	ErrInvalidVerification   = apperr.New(apperr.KindValidation, "invalid_verification", "Invalid verification token")
	ErrInvalidEmployerType   = apperr.New(apperr.KindValidation, "invalid_employer_type", "Invalid employer type")
	ErrInvalidEmailDigest    = apperr.New(apperr.KindValidation, "invalid_email_digest", "Invalid email digest frequency")
	ErrInvalidCompanySize    = apperr.New(apperr.KindValidation, "invalid_company_size", "Invalid company size")
	ErrInvalidCredentials    = apperr.New(apperr.KindAuthentication, "invalid_credentials", "Invalid credentials")
	ErrUnauthorized          = apperr.New(apperr.KindAuthentication, "unauthorized", "Unauthorized")
	ErrNotVerified           = apperr.New(apperr.KindAuthorization, "account_not_verified", "Please verify your account first")
	ErrAccessDenied          = apperr.New(apperr.KindAuthorization, "access_denied", "Access denied")
	ErrAccountNotFound       = apperr.New(apperr.KindNotFound, "account_not_found", "User not found")
	ErrEmployerProfileAbsent = apperr.New(apperr.KindNotFound, "profile_not_found", "Employer profile not found")
	ErrEmailTaken            = apperr.New(apperr.KindConflict, "email_taken", "User with this email already exists")
	ErrStoreUnavailable      = apperr.New(apperr.KindUpstream, "store_unavailable", "Database connection failed")
	ErrInternal              = apperr.New(apperr.KindInternal, "internal", "Internal server error")
)
