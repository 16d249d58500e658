package domain

import "errors"

// Auth errors
var (
	ErrSignInRequired  = errors.New("sign in required")
	ErrAccountNotFound = errors.New("account not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Duplication errors, checked proactively before creation/update
var (
	ErrDuplicatedEmail    = errors.New("email already exists")
	ErrDuplicatedNickname = errors.New("nickname already exists")
)

// OTP validation errors
var (
	ErrOtpNotFound = errors.New("otp not found")
	ErrExpiredOtp  = errors.New("otp is expired")
	ErrInvalidOtp  = errors.New("otp does not match")
)

// OAuth errors
var (
	ErrNotVerifiedGoogleAccount = errors.New("google account is not verified")
	ErrInvalidTokenPayload      = errors.New("invalid oauth token payload")
)

// File errors
var (
	ErrUploadDetailNotFound = errors.New("upload detail not found")
)
