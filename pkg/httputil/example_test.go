package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/httputil"
)

func ExamplePolicy_Do() {
	policy := httputil.NewPolicy(httputil.NewHostGate())
	policy.Delay = time.Millisecond

	calls := 0
	err := policy.Do(context.Background(), "gitlab.com", func() error {
		calls++
		if calls < 2 {
			return httputil.Retryable(errors.New("502 bad gateway"))
		}
		return nil
	})
	fmt.Println("Error:", err)
	fmt.Println("Calls:", calls)
	// Output:
	// Error: <nil>
	// Calls: 2
}

func ExampleRetry_exhausted() {
	err := httputil.Retry(context.Background(), 2, time.Millisecond, func() error {
		return httputil.Retryable(errors.New("connection refused"))
	})
	fmt.Println(errs.GetCode(err))
	// Output:
	// NETWORK_ERROR
}
