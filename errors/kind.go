package errors

import "fmt"

// Detail keys shared by model errors.
const (
	DetailModel = "model"
	DetailCount = "count"
)

// Kind tags an error code with the model it belongs to. It is comparable and
// implements error so it can be used as an errors.Is target: a Kind with an
// empty Model matches the code for every model.
type Kind struct {
	Code  ErrorCode
	Model string
}

// KindOf returns the kind for code scoped to model.
func KindOf(code ErrorCode, model string) Kind {
	return Kind{Code: code, Model: model}
}

// Error implements error.
func (k Kind) Error() string {
	if k.Model == "" {
		return string(k.Code)
	}
	return fmt.Sprintf("%s.%s", k.Model, k.Code)
}

// Generic returns the kind without its model scope.
func (k Kind) Generic() Kind {
	return Kind{Code: k.Code}
}
