package github

import (
	"errors"
	"net/http"

	gogh "github.com/google/go-github/v68/github"
)

// ErrorClass buckets GitHub API failures the way callers care about them.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassAuth
	ClassNotFound
	ClassRateLimited
	ClassConflict
)

func (c ErrorClass) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassNotFound:
		return "not-found"
	case ClassRateLimited:
		return "rate-limited"
	case ClassConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Classify maps a go-github error to an ErrorClass.
func Classify(err error) ErrorClass {
	var rateErr *gogh.RateLimitError
	if errors.As(err, &rateErr) {
		return ClassRateLimited
	}
	var abuseErr *gogh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return ClassRateLimited
	}

	var respErr *gogh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ClassAuth
		case http.StatusNotFound:
			return ClassNotFound
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return ClassConflict
		case http.StatusTooManyRequests:
			return ClassRateLimited
		}
	}
	return ClassUnknown
}
