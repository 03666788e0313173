package validator

import (
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

type ReviewValidator struct {
	v *validation.Validator
}

func NewReviewValidator(v *validation.Validator) *ReviewValidator {
	return &ReviewValidator{v: v}
}

func (rv *ReviewValidator) Validate(req *model.ReviewCreate) error {
	return rv.v.Struct(req)
}

// ValidateUpdate checks the patch itself; callers validate the merged review
// with ValidateReview.
func (rv *ReviewValidator) ValidateUpdate(u *model.ReviewUpdate) error {
	return rv.v.Struct(u)
}

func (rv *ReviewValidator) ValidateReview(r *model.Review) error {
	if err := rv.v.Struct(r.Ratings); err != nil {
		return err
	}
	var errs validation.ValidationErrors
	if r.Rating < 1 || r.Rating > 5 {
		errs = append(errs, validation.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	if n := len([]rune(r.Comment)); n < 10 || n > 5000 {
		errs = append(errs, validation.ValidationError{Field: "comment", Message: "comment must be between 10 and 5000 characters"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (rv *ReviewValidator) ValidateResponse(req *model.HostResponseCreate) error {
	return rv.v.Struct(req)
}
