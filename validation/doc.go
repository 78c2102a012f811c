// Package validation validates configuration and request structs with
// go-playground/validator struct tags and reports failures as
// *errors.AppError values listing each offending field.
//
//	type Params struct {
//	    Threshold float64 `json:"diarize_threshold" validate:"gt=0,lte=2"`
//	}
//	err := validation.Validate(p)
package validation
