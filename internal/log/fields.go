package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBillID     = "bill_id"
	FieldEmail      = "email"
	FieldRoute      = "route"
	FieldRawDate    = "raw_date"
	FieldRawStatus  = "raw_status"
	FieldFileName   = "file_name"
	FieldFileKey    = "file_key"
	FieldFailure    = "failure"
	FieldCount      = "count"
	FieldDiagnostic = "diagnostics"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBills   = "bills"
	ComponentNewBill = "newbill"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpList      = "list"
	OpUpload    = "upload"
	OpSync      = "sync"
	OpValidate  = "validate"
	OpNormalize = "normalize"
	OpNavigate  = "navigate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBill adds the identifying fields of a bill
func (f LogFields) WithBill(id, email string) LogFields {
	if id != "" {
		f[FieldBillID] = id
	}
	if email != "" {
		f[FieldEmail] = email
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
