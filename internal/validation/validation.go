// Package validation carries the field-scoped error value shared by
// every entity validator. Validators return these as data so callers
// can render them inline next to the offending field; they are never
// raised as errors across a component boundary.
package validation

// FieldError is a user-correctable, field-scoped validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
