package audit

import (
	"errors"
	"fmt"
)

// User-facing messages for each failure class.
const (
	MsgNoFileSelected  = "Por favor, selecione um arquivo"
	MsgProcessingError = "Erro ao processar arquivo"
	MsgConnectionError = "Erro de conexão com o servidor"
)

var (
	// ErrNoFileSelected is returned when a submission is attempted without a file.
	ErrNoFileSelected = errors.New("audit: no file selected")
	// ErrConnection wraps every failure where no usable response was received.
	ErrConnection = errors.New("audit: connection failed")
)

// ServiceError is a non-2xx answer from the Audit Service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("audit service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("audit service: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage maps any submission error to the text shown in the alert.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoFileSelected) {
		return MsgNoFileSelected
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Message != "" {
			return svcErr.Message
		}
		return MsgProcessingError
	}
	return MsgConnectionError
}
