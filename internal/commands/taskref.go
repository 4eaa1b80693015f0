package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// ErrTaskRefRequired indicates no task number was provided.
var ErrTaskRefRequired = errors.New("task number required")

// ParseTaskRef parses the leading task number from args and returns it with
// the remaining arguments.
//
// Task numbers are the 1-based rows printed by list. The number must be all
// ASCII digits; zero is reported as out of range.
func ParseTaskRef(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, nil, fmt.Errorf("invalid task number: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid task number: %s", ref)
	}
	if num < 1 {
		return 0, nil, fmt.Errorf("task number out of range: %d", num)
	}
	return num, args[1:], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// parseTaskRefArgs is ParseTaskRef with the error already reported.
func parseTaskRefArgs(args []string, errOut io.Writer) (int, []string, bool) {
	num, rest, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, nil, false
	}
	return num, rest, true
}
