package cli

// PreflightError is a user-facing failure with a suggested fix.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
	Err      error
}

func (e *PreflightError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PreflightError) Unwrap() error {
	return e.Err
}
