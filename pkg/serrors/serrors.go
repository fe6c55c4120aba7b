package serrors

import "fmt"

// Base is a coded error shared across services. Code is stable and safe to
// match on; Message is for operators; Doc optionally points at a runbook.
type Base struct {
	Code    string
	Message string
	Doc     string
}

func NewError(code, message, doc string) *Base {
	return &Base{Code: code, Message: message, Doc: doc}
}

func (e *Base) Error() string {
	if e.Doc == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Doc)
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}
