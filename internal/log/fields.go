package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldStreamID    = "stream_id"
	FieldStreamer    = "streamer"
	FieldStreamDate  = "stream_date"
	FieldActivityID  = "activity_id"
	FieldActivity    = "activity_type"
	FieldUsername    = "username"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
	FieldStoreKey    = "store_key"
	FieldBackend     = "backend"
	FieldMirrorRef   = "mirror_ref"
)

// Components
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentRepository = "repository"
	ComponentService    = "stream_service"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentReport     = "report"
	ComponentRateLimit  = "rate_limit"
	ComponentTrace      = "trace"
	ComponentBackend    = "backend"
)

// Operations
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpWrite    = "write"
	OpAppend   = "append"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMirror   = "mirror"
	OpValidate = "validate"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

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

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message, skipping nil errors.
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

// WithStream adds the identity of a stream log.
func (f LogFields) WithStream(id, streamer, date string) LogFields {
	f[FieldStreamID] = id
	f[FieldStreamer] = streamer
	f[FieldStreamDate] = date
	return f
}

// WithActivity adds activity fields. Zero count and amount are left out.
func (f LogFields) WithActivity(id, kind, username string, count int, amountCents int64) LogFields {
	f[FieldActivityID] = id
	f[FieldActivity] = kind
	f[FieldUsername] = username
	if count > 0 {
		f[FieldCount] = count
	}
	if amountCents > 0 {
		f[FieldAmountCents] = amountCents
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
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
