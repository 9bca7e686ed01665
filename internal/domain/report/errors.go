package report

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	// ErrNoResults is the distinct "nothing matched" signal: it is not a
	// query failure and must not be surfaced as one.
	ErrNoResults = errors.New("no results")
	// ErrNoData guards exports: an empty report never produces an artifact.
	ErrNoData = errors.New("no data to export")
)

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsErrNoResults(err error) bool  { return errors.Is(err, ErrNoResults) }
func IsErrNoData(err error) bool     { return errors.Is(err, ErrNoData) }
