package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldRangeStart  = "start"
	FieldRangeEnd    = "end"
	FieldCount       = "count"
	FieldBackend     = "backend"
	FieldMessageID   = "message_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentDigest    = "digest"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operations defines standard operation names
const (
	OpRecord   = "record"
	OpQuery    = "query"
	OpMirror   = "mirror"
	OpDigest   = "digest"
	OpRender   = "render"
	OpParse    = "parse"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields is an ordered list of key/value pairs ready for slog.
type Fields []any

// NewFields creates an empty field list.
func NewFields() Fields {
	return Fields{}
}

func (f Fields) add(k string, v any) Fields {
	return append(f, k, v)
}

// WithComponent adds component field
func (f Fields) WithComponent(component string) Fields {
	return f.add(FieldComponent, component)
}

// WithOperation adds operation field
func (f Fields) WithOperation(op string) Fields {
	return f.add(FieldOperation, op)
}

// WithError adds error field when err is non-nil
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

// WithTransaction adds the row fields. The description is omitted when empty.
func (f Fields) WithTransaction(date, amount, category, description string) Fields {
	f = f.add(FieldDate, date).add(FieldAmount, amount).add(FieldCategory, category)
	if description != "" {
		f = f.add(FieldDescription, description)
	}
	return f
}

// WithRange adds a date range.
func (f Fields) WithRange(start, end string) Fields {
	return f.add(FieldRangeStart, start).add(FieldRangeEnd, end)
}
