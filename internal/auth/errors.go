package auth

import "errors"

// Flow errors carry the exact message shown to the farmer; the HTTP layer maps
// them to status codes. All are recoverable: the flow stays at the input step
// on precondition failures and at the OTP step on code failures.
var (
	// ErrIdentifierRequired: login submitted without a phone or email.
	ErrIdentifierRequired = errors.New("Please enter Phone or Email")
	// ErrAccountNotFound: the identifier resolves to no directory entry.
	ErrAccountNotFound = errors.New("Account not found. Please Sign Up.")
	// ErrFieldsRequired: registration submitted without name, phone, or location.
	ErrFieldsRequired = errors.New("Please fill required fields (Name, Phone, Location)")
	// ErrPhoneRegistered: registration with a phone that already has an entry.
	ErrPhoneRegistered = errors.New("Phone number already registered. Please Login.")
	// ErrChallengeExpired: verification attempted with no live challenge.
	ErrChallengeExpired = errors.New("Session expired. Retry.")
	// ErrInvalidCode: the entered code does not match the issued one.
	ErrInvalidCode = errors.New("Invalid or Expired OTP")
	// ErrIncorrectPassword: password login with a wrong or unset password.
	ErrIncorrectPassword = errors.New("Incorrect password. Please try again.")
)
