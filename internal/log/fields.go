package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldCollection  = "collection"
	FieldMonth       = "month"
	FieldAmountCents = "amount_cents"
	FieldEmployeeID  = "employee_id"
	FieldProjectID   = "project_id"
	FieldPaymentID   = "payment_id"
	FieldExpenseID   = "expense_id"
	FieldIncomeID    = "income_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
)
