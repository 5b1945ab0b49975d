package log

import (
	"sort"

	"boatshare/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwners     = "owners"
	FieldPrice      = "purchase_price"
	FieldRate       = "interest_rate"
	FieldTermYears  = "term_years"
	FieldLoanAmount = "internal_loan"
	FieldMonthly    = "monthly_payment"
	FieldCacheHit   = "cache_hit"
	FieldBoatID     = "boat_id"
	FieldBoatName   = "boat_name"
	FieldBoatPrice  = "boat_price"
	FieldEventKind  = "event_kind"
	FieldSheetsRef  = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentFinancing = "financing"
	ComponentBoats     = "boats"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCalculate = "calculate"
	OpSchedule  = "schedule"
	OpHistory   = "history"
	OpPropose   = "propose"
	OpVote      = "vote"
	OpRemove    = "remove"
	OpList      = "list"
	OpSync      = "sync"
	OpPublish   = "publish"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field, skipping nil errors
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithFinancing adds the inputs of a financing calculation
func (f LogFields) WithFinancing(p core.FinancingParameters, owners int) LogFields {
	f[FieldPrice] = p.PurchasePrice
	f[FieldRate] = p.AnnualInterestRatePercent
	f[FieldTermYears] = p.LoanTermYears
	f[FieldOwners] = owners
	return f
}

// WithResult adds the headline numbers of a financing result
func (f LogFields) WithResult(r core.FinancingResult) LogFields {
	f[FieldLoanAmount] = r.InternalLoanAmount
	f[FieldMonthly] = r.MonthlyPayment
	return f
}

func (f LogFields) WithBoat(b core.Boat) LogFields {
	f[FieldBoatID] = b.ID
	f[FieldBoatName] = b.Name
	f[FieldBoatPrice] = b.Price
	return f
}

// WithHTTP adds request and response fields
func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog, sorted by key so
// log lines are stable
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
