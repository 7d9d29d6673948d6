package testutil

import (
	"log"
	"testing"
)

// ConcurrentTestReporter lets gomock controllers be shared by goroutines:
// Fatalf on a testing.T must not be called outside the test goroutine.
// https://github.com/golang/mock/issues/145
type ConcurrentTestReporter struct {
	*testing.T
}

func NewConcurrentTestReporter(t *testing.T) *ConcurrentTestReporter {
	return &ConcurrentTestReporter{t}
}

func (r *ConcurrentTestReporter) Fatalf(format string, args ...any) {
	log.Fatalf(format, args...)
}
