// internal/common/errors/handler.go
package errors

// ErrorHandler normalizes, logs and classifies errors raised during a
// ranking pass. Signal-level failures degrade and continue; only the
// input-shape errors abort the pass.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs the error and reports whether the pass should abort.
// Degradable errors (missing signals, collaborator failures) log as
// warnings and let the batch continue.
func (h *ErrorHandler) Handle(passID string, err error) (abort bool) {
	stdErr := AsStandard(err)
	fields := map[string]interface{}{
		"passId":    passID,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if IsDegradable(stdErr.Code) {
		h.logger.Warn(stdErr.Message, fields)
		return false
	}
	h.logger.Error(stdErr.Message, fields)
	return true
}

// IsDegradable reports whether an error of this code degrades a single
// signal or candidate instead of ending the pass.
func IsDegradable(code ErrorCode) bool {
	switch code {
	case ErrCodeMissingSignal,
		ErrCodeRerankerUnavailable,
		ErrCodeRerankerTimeout,
		ErrCodeEmbeddingFailed,
		ErrCodeVectorSearchFailed,
		ErrCodeFeatureStoreFailed,
		ErrCodeCacheUnavailable:
		return true
	}
	return false
}
