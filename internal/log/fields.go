package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldGroupID     = "group_id"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldMonth       = "month"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
	ComponentAuth    = "auth"
	ComponentSettle  = "settle"
)
