package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/likearthian/recordstore"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // record not found, nothing affected
	ExitCommandError = 2 // bad flags, configuration or connection
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Input validation
// failures count as command errors, anything else as a failure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if recordstore.IsInvalidArgument(err) {
		return ExitCommandError
	}
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// documentRecord embeds the stored document as JSON instead of a string.
func documentRecord(codec recordstore.Codec, raw recordstore.RawRecord) (recordstore.Record[json.RawMessage], error) {
	return recordstore.MapRecord[json.RawMessage](codec, raw)
}

type pageOutput struct {
	Records     []recordstore.Record[json.RawMessage] `json:"records"`
	TotalCount  int                                   `json:"totalCount"`
	PageNumber  int                                   `json:"pageNumber"`
	PageSize    int                                   `json:"pageSize"`
	TotalPages  int                                   `json:"totalPages"`
	IsFirstPage bool                                  `json:"isFirstPage"`
	IsLastPage  bool                                  `json:"isLastPage"`
	StartIndex  int                                   `json:"startIndex"`
	EndIndex    int                                   `json:"endIndex"`
}

func newPageOutput(p recordstore.Page[json.RawMessage]) pageOutput {
	return pageOutput{
		Records:     p.Records,
		TotalCount:  p.TotalCount,
		PageNumber:  p.PageNumber,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages(),
		IsFirstPage: p.IsFirstPage(),
		IsLastPage:  p.IsLastPage(),
		StartIndex:  p.StartIndex(),
		EndIndex:    p.EndIndex(),
	}
}
