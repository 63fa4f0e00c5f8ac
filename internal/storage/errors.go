package storage

// Error marks a failure of the store itself (I/O error, corrupted file,
// full disk) as opposed to an absent record. Callers distinguish the two
// with errors.As / errors.Is against core.ErrNotFound.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
