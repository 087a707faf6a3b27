package validation

import (
	"errors"
	"fmt"
	"slices"

	"productcatalog/domain"
)

const lowestPriority = 5

// Priority ranks a field error for display; lower wins.
// required > min length > max length > id exists > min date > anything else.
func Priority(err error) int {
	var (
		req *domain.RequiredError
		mnl *domain.MinLengthError
		mxl *domain.MaxLengthError
		ide *domain.IDExistsError
		mnd *domain.MinDateError
	)
	switch {
	case errors.As(err, &req):
		return 0
	case errors.As(err, &mnl):
		return 1
	case errors.As(err, &mxl):
		return 2
	case errors.As(err, &ide):
		return 3
	case errors.As(err, &mnd):
		return 4
	}
	return lowestPriority
}

// SortByPriority orders errs in place, highest priority first.
func SortByPriority(errs []error) {
	slices.SortStableFunc(errs, func(a, b error) int {
		return Priority(a) - Priority(b)
	})
}

// Message returns the user-facing text of the highest-priority error in errs,
// or "" when errs is empty.
func Message(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	best := errs[0]
	for _, err := range errs[1:] {
		if Priority(err) < Priority(best) {
			best = err
		}
	}

	var (
		mnl *domain.MinLengthError
		mxl *domain.MaxLengthError
	)
	switch Priority(best) {
	case 0:
		return "This field is required"
	case 1:
		errors.As(best, &mnl)
		return fmt.Sprintf("Minimum length is %d characters", mnl.Required)
	case 2:
		errors.As(best, &mxl)
		return fmt.Sprintf("Maximum length is %d characters", mxl.Required)
	case 3:
		return "This ID already exists"
	case 4:
		return "Date must be today or later"
	}
	return "Invalid value"
}
