package github

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	gogh "github.com/google/go-github/v68/github"
)

func respErr(status int) error {
	return &gogh.ErrorResponse{
		Response: &http.Response{StatusCode: status},
		Message:  http.StatusText(status),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{respErr(http.StatusUnauthorized), ClassAuth},
		{respErr(http.StatusForbidden), ClassAuth},
		{respErr(http.StatusNotFound), ClassNotFound},
		{respErr(http.StatusConflict), ClassConflict},
		{respErr(http.StatusUnprocessableEntity), ClassConflict},
		{respErr(http.StatusTooManyRequests), ClassRateLimited},
		{&gogh.RateLimitError{}, ClassRateLimited},
		{errors.New("plain"), ClassUnknown},
	}

	for _, tt := range tests {
		// Classification must survive wrapping.
		wrapped := fmt.Errorf("op failed: %w", tt.err)
		if got := Classify(wrapped); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorClassString(t *testing.T) {
	if ClassAuth.String() != "auth" || ClassUnknown.String() != "unknown" {
		t.Fatal("unexpected class names")
	}
}
