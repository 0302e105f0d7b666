package error

// CodedError pairs a stable, client-facing code with a human message and the
// cause. Each domain instantiates it with its own code type, so errors.As
// against *AuthError never matches a *CategoryError.
type CodedError[C ~string] struct {
	Code    C
	Message string
	Err     error
}

func (e *CodedError[C]) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CodedError[C]) Unwrap() error {
	return e.Err
}

func newCoded[C ~string](code C, message string, err error) *CodedError[C] {
	return &CodedError[C]{Code: code, Message: message, Err: err}
}
