package extract

import (
	"errors"
	"fmt"
)

// Code identifies which structural assumption about the bundle broke. One
// code exists per missed shape so callers can log precisely what changed
// when the upstream obfuscation format drifts.
type Code string

const (
	ErrCodeHelperObjectNotFound        Code = "HELPER_OBJECT_NOT_FOUND"
	ErrCodeHelperObjectNoOperations    Code = "HELPER_OBJECT_NO_RECOGNIZED_OPERATIONS"
	ErrCodeDecipherDriverNotFound      Code = "DECIPHER_DRIVER_NOT_FOUND"
	ErrCodeGlobalDeclarationsNotFound  Code = "GLOBAL_DECLARATIONS_NOT_FOUND"
	ErrCodeNTransformNotFound          Code = "N_TRANSFORM_NOT_FOUND"
	ErrCodeNTransformParameterNotFound Code = "N_TRANSFORM_PARAMETER_NOT_FOUND"
	ErrCodeMalformedOrOversizedBundle  Code = "MALFORMED_OR_OVERSIZED_BUNDLE"
	ErrCodeShapeCatalogueUnavailable   Code = "SHAPE_CATALOGUE_UNAVAILABLE"
)

// ShapeError is a terminal extraction failure: the named shape did not match
// anywhere in the bundle, or could not be brought to bear at all (Err holds
// the cause in that case). There is never a partial result behind one.
type ShapeError struct {
	Code  Code
	Shape string
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shape %q unusable (%s): %v", e.Shape, e.Code, e.Err)
	}
	return fmt.Sprintf("no match for shape %q (%s)", e.Shape, e.Code)
}

func (e *ShapeError) Unwrap() error { return e.Err }

func shapeErr(code Code, shape string) error {
	return &ShapeError{Code: code, Shape: shape}
}

// IsCode reports whether err is a ShapeError carrying the given code.
func IsCode(err error, code Code) bool {
	var se *ShapeError
	return errors.As(err, &se) && se.Code == code
}
