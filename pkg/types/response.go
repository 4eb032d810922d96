package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// FieldViolation names one rejected field. Field is a JSON path such as
// "plans[2].commission_value".
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationDetails is the details payload of VALIDATION_ERROR responses for
// request bodies and commission batches.
type ValidationDetails struct {
	Violations []FieldViolation `json:"violations"`
}

// Add appends a violation.
func (v *ValidationDetails) Add(field, message string) {
	v.Violations = append(v.Violations, FieldViolation{Field: field, Message: message})
}

// Empty reports whether no violation was collected.
func (v ValidationDetails) Empty() bool {
	return len(v.Violations) == 0
}
