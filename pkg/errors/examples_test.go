package errors_test

import (
	"fmt"

	"github.com/agentstation/opslevel/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "service",
		ID:       "svc-a",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Service not found")
	}

	// Output: Service not found
}

// Example_aPIError demonstrates transport error handling.
func Example_aPIError() {
	err := errors.NewAPIError("getServiceMaturityForBackstage", 429, "Rate limit exceeded")

	switch {
	case errors.IsRateLimited(err):
		fmt.Println("Rate limited - try later")
	case errors.IsUnauthorized(err):
		fmt.Println("Check proxy credentials")
	}

	// Output: Rate limited - try later
}
