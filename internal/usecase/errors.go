package usecase

// DomainError marks caller mistakes (bad group key, empty stage name) that
// handlers translate to 400s. The analytics core itself never errors: it
// degrades to empty or zero results.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}
