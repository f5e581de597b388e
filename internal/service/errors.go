package service

// FieldError is a user-visible failure tied to one input field. An
// empty Field marks a non-field error, the kind credential problems
// produce.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func fieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func nonFieldError(message string) *FieldError {
	return &FieldError{Message: message}
}
