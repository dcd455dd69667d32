package port

import "kbrag/internal/domain"

// Loader produces Documents from a knowledge-base directory.
//
// A file that cannot be read or parsed never aborts the whole load: it is
// reported in the returned error list and loading continues.
type Loader interface {
	Load(dir string) ([]domain.Document, []LoadError)
}

// LoadError records one source file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e LoadError) Unwrap() error {
	return e.Err
}
