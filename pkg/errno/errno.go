package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode converts an error to its code and message. Wrapped Errno values are
// unwrapped so handlers can return errors with context attached.
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, ptr.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
)

// Wallet Errors (30000+)
var (
	ErrProviderUnavailable = Errno{Code: 30001, Message: "Wallet provider unavailable"}
	ErrConnectionFailed    = Errno{Code: 30002, Message: "Wallet connection failed"}
	ErrNotConnected        = Errno{Code: 30003, Message: "Connect your wallet first"}
	ErrUnknownNetwork      = Errno{Code: 30101, Message: "Unknown network"}
	ErrInvalidApproval     = Errno{Code: 30201, Message: "Invalid approval request"}
	ErrConfirmRequired     = Errno{Code: 30202, Message: "Approval must be explicitly confirmed"}
	ErrApprovalInProgress  = Errno{Code: 30203, Message: "Another approval is in progress"}
	ErrApprovalFailed      = Errno{Code: 30204, Message: "Approval request failed or rejected"}
)
