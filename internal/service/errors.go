package service

import (
	"errors"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/repository"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/validation"
)

// invalidPayload reports request validation failures with per-field messages.
func invalidPayload(v *validation.Validator, err error, message string) *appErrors.Error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	return appErr.WithDetails(v.Translate(err))
}

// ruleViolation maps domain construction failures to RULE_VIOLATION carrying
// the offending value. Other errors pass through untouched.
func ruleViolation(err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		appErr := appErrors.Wrap(err, appErrors.ErrRuleViolation.Code, appErrors.ErrRuleViolation.Status, ve.Error())
		return appErr.WithDetails(map[string]string{"field": ve.Field, "value": ve.Value})
	}
	return err
}

// storeError maps repository sentinels to typed errors. Errors that are
// already typed are returned as is.
func storeError(err error, notFound, duplicate, internal string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrDuplicate, duplicate)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
