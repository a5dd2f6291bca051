package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const invalidEmailMsg = "Please enter a valid email address"

// Validate checks a create-user form before it is sent
func (r CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Role, validation.Required, validation.In(RoleCandidate, RoleRecruiter)),
	)
	if err != nil {
		return NewValidationError("Please fill in all fields")
	}
	if err := validation.Validate(r.Email, is.EmailFormat); err != nil {
		return NewValidationError(invalidEmailMsg)
	}
	if err := validation.Validate(r.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)); err != nil {
		return NewValidationError(fmt.Sprintf("Unknown priority: %s", r.Priority))
	}
	return nil
}

// Validate checks a schedule-by-email form. Duration is checked by the caller.
func (r EmailScheduleRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.CandidateEmail, validation.Required),
		validation.Field(&r.RecruiterEmail, validation.Required),
		validation.Field(&r.Date, validation.Required),
		validation.Field(&r.Time, validation.Required),
	)
	if err != nil {
		return NewValidationError("Please fill in all fields")
	}
	return validateEmails(r.CandidateEmail, r.RecruiterEmail)
}

// Validate checks an auto-schedule form. Duration is checked by the caller.
func (r AutoScheduleRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.CandidateEmail, validation.Required),
		validation.Field(&r.RecruiterEmail, validation.Required),
	)
	if err != nil {
		return NewValidationError("Please enter both email addresses")
	}
	return validateEmails(r.CandidateEmail, r.RecruiterEmail)
}

func validateEmails(emails ...string) error {
	for _, e := range emails {
		if err := validation.Validate(e, is.EmailFormat); err != nil {
			return NewValidationError(invalidEmailMsg)
		}
	}
	return nil
}
