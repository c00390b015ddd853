package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the code.
//
// # Search Errors (SRCH001)
//
//	SRCH001 - Empty search term: No brand or company was selected
//	          Action: Choose a name from the list
//	          Patterns: "empty search term"
//
// # Tag Errors (TAG001-TAG002)
//
//	TAG001 - Empty tag: Please enter a valid tag.
//	         Action: Type the tag text before adding it
//	         Patterns: "empty tag"
//
//	TAG002 - Tag limit: This session has reached its tag limit
//	         Action: Download the added tags and start a new session
//	         Patterns: "tag limit reached"
//
// # Summary Errors (SUM001-SUM004)
//
//	SUM001 - Not configured: AI summaries are not configured
//	         Action: Set ANTHROPIC_API_KEY and restart the server
//	         Patterns: "summary not configured"
//
//	SUM003 - Timed out: The AI summary took too long
//	         Action: Please try again
//	         Patterns: "context deadline exceeded"
//
//	SUM004 - Busy: Too many summaries are being generated
//	         Action: Please wait a moment and try again
//	         Patterns: "too many summaries"
//
//	SUM002 - Failed: The AI summary could not be generated
//	         Action: Please try again later
//	         Patterns: "summary failed"
//
// # Data Errors (DATA001-DATA004)
//
//	DATA001 - Source not found: A configured data file does not exist
//	DATA002 - Unsupported source: A source is not .csv, .xlsx or pg:
//	DATA003 - Database not configured: A pg: source needs DATABASE_URL
//	DATA004 - Sheet not found: The workbook has no such sheet
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones. A timed-out summary carries both "summary failed"
// and "context deadline exceeded", so the timeout pattern comes first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Search and Tag Errors
	// =========================================================================
	{
		pattern: "empty search term",
		msg: UserMessage{
			Message: "No brand or company was selected",
			Action:  "Choose a name from the list",
			Code:    "SRCH001",
		},
	},
	{
		pattern: "empty tag",
		msg: UserMessage{
			Message: "Please enter a valid tag.",
			Action:  "Type the tag text before adding it",
			Code:    "TAG001",
		},
	},
	{
		pattern: "tag limit reached",
		msg: UserMessage{
			Message: "This session has reached its tag limit",
			Action:  "Download the added tags and start a new session",
			Code:    "TAG002",
		},
	},

	// =========================================================================
	// Summary Errors
	// =========================================================================
	{
		pattern: "summary not configured",
		msg: UserMessage{
			Message: "AI summaries are not configured",
			Action:  "Set ANTHROPIC_API_KEY and restart the server",
			Code:    "SUM001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The AI summary took too long",
			Action:  "Please try again",
			Code:    "SUM003",
		},
	},
	{
		pattern: "too many summaries",
		msg: UserMessage{
			Message: "Too many summaries are being generated",
			Action:  "Please wait a moment and try again",
			Code:    "SUM004",
		},
	},
	{
		pattern: "summary failed",
		msg: UserMessage{
			Message: "The AI summary could not be generated",
			Action:  "Please try again later",
			Code:    "SUM002",
		},
	},

	// =========================================================================
	// Data Source Errors
	// =========================================================================
	{
		pattern: "source not found",
		msg: UserMessage{
			Message: "A configured data file does not exist",
			Action:  "Check FACTBOOK_SOURCES, PIPELINE_SOURCES and MAPPING_SOURCE",
			Code:    "DATA001",
		},
	},
	{
		pattern: "unsupported source",
		msg: UserMessage{
			Message: "A data source has an unsupported type",
			Action:  "Use .csv or .xlsx files, or pg:schema.table",
			Code:    "DATA002",
		},
	},
	{
		pattern: "database not configured",
		msg: UserMessage{
			Message: "A Postgres source is configured without a database",
			Action:  "Set DATABASE_URL",
			Code:    "DATA003",
		},
	},
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "The workbook has no such sheet",
			Action:  "Check the sheet name after '#' in the source",
			Code:    "DATA004",
		},
	},

	// =========================================================================
	// Rate Limiting
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(ErrEmptyTag)
//	// msg.Code == "TAG001"
//	// msg.Message == "Please enter a valid tag."
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
