package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Command completed
	ExitNoResults = 1 // Ran, but nothing could be scored
	ExitError     = 2 // Configuration or runtime error
)

// NoResultsError indicates the command ran to completion but produced
// no scorable results (no matching files, no surviving combos).
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var noResults *NoResultsError
		if errors.As(err, &noResults) {
			os.Exit(ExitNoResults)
		}

		os.Exit(ExitError)
	}
}
