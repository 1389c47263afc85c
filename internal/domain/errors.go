package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMissingAgentID is returned when a call omits agent_id and no default is configured.
var ErrMissingAgentID = errors.New("agent_id is required. Either provide it in the request or set LETTA_DEFAULT_AGENT_ID environment variable.")

// ValidationIssue describes a single offending field of a tool call.
type ValidationIssue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationError carries every issue found while binding tool arguments.
// Validation never partially succeeds: either all fields bind or the call is rejected.
type ValidationError struct {
	Issues []ValidationIssue
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(issue.Path, "."), issue.Message))
	}
	return "Validation error: " + strings.Join(parts, ", ")
}

// HasField reports whether an issue was already recorded for the field.
func (e *ValidationError) HasField(field string) bool {
	for _, issue := range e.Issues {
		if len(issue.Path) > 0 && issue.Path[0] == field {
			return true
		}
	}
	return false
}

// ConfigError is raised when the server lacks configuration needed for a remote call.
type ConfigError struct {
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return e.Message
}

// UnknownToolError is returned by the router for unregistered tool names.
type UnknownToolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}
