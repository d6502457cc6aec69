package logger

// Field names shared across datakit components. Using the constants
// keeps log output queryable by a single key set.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldStage     = "stage"
	FieldStatus    = "status"
	FieldRecords   = "records"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Fields builds a field map from alternating key/value pairs. Keys that
// are not strings are skipped, as is a trailing key without a value.
//
//	logger.Info("collected", logger.Fields(logger.FieldRecords, n))
func Fields(kvs ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		fields[key] = kvs[i+1]
	}
	return fields
}
