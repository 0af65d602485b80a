package protocol

import (
	"encoding/json"
	"errors"
	"strings"
)

// Paths and query parameters understood by the coordinator.
const (
	TestsPath   = "/tests"
	ResultsPath = "/results"

	RunnerParam   = "runner"
	RevisionParam = "revision"
)

var ErrMissingFinished = errors.New("missing required key \"finished\"")

// WorkAssignment is the coordinator's answer to a request for work.
//
// Class has the form "<module path> <class name>". Class and Methods may
// be empty. Finished is terminal: once set, no more work will be offered
// to the runner.
type WorkAssignment struct {
	Class    string   `json:"class,omitempty"`
	Methods  []string `json:"methods,omitempty"`
	Finished bool     `json:"finished"`
}

// Finished returns a terminal assignment with no work attached.
func FinishedAssignment() *WorkAssignment {
	return &WorkAssignment{Finished: true}
}

// HasWork returns true if the assignment names both a class and at least
// one method.
func (a *WorkAssignment) HasWork() bool {
	return a.Class != "" && len(a.Methods) > 0
}

func (a *WorkAssignment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Class    *string  `json:"class"`
		Methods  []string `json:"methods"`
		Finished *bool    `json:"finished"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Finished == nil {
		return ErrMissingFinished
	}

	*a = WorkAssignment{
		Methods:  raw.Methods,
		Finished: *raw.Finished,
	}
	if raw.Class != nil {
		a.Class = *raw.Class
	}
	return nil
}

// SplitClassPath splits a class path on its first space into module path
// and class name. The class name is empty if there is no space.
func SplitClassPath(classPath string) (modulePath, className string) {
	modulePath, className, _ = strings.Cut(classPath, " ")
	return modulePath, className
}

// JoinClassPath is the inverse of SplitClassPath.
func JoinClassPath(modulePath, className string) string {
	return modulePath + " " + className
}
