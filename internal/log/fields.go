package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldDimension   = "dimension"
	FieldDate        = "date"
	FieldWeekEnd     = "week_end"
	FieldRecordType  = "type"
	FieldPerson      = "person"
	FieldAmount      = "amount"
	FieldRecordCount = "record_count"
	FieldRecordID    = "record_id"
	FieldSheet       = "sheet"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentMirror  = "mirror"
	ComponentLock    = "lock"
	ComponentExport  = "export"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpReport   = "report"
	OpExport   = "export"
	OpMirror   = "mirror"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
