package task

import (
	"strconv"
	"strings"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
)

// NotFound returns a TaskNotFound error for the given ID.
func NotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateTaskID returns an error for unparseable task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateMoveTarget returns an error when a task would be moved into its own subtree.
func ValidateMoveTarget(id, parentID int) *clierr.Error {
	return clierr.Newf(clierr.MoveIntoSelf,
		"cannot move task #%d under #%d: target is inside the moved subtree", id, parentID).
		WithDetails(map[string]any{"id": id, "parent": parentID})
}

// NoFurtherState returns an error for advancing a task already in the final state.
func NoFurtherState(id int, current string) *clierr.Error {
	return clierr.Newf(clierr.NoFurtherState, "task #%d is already in the final state (%s)", id, current).
		WithDetails(map[string]any{"id": id, "state": current})
}

// WithTaskID attaches the offending task ID to a state validation error.
func WithTaskID(err error, id int) error {
	if ce, ok := err.(*clierr.Error); ok && ce.Code == clierr.UnknownState {
		details := map[string]any{"id": id}
		for k, v := range ce.Details {
			details[k] = v
		}
		return clierr.Newf(clierr.UnknownState, "task #%d: %s", id, ce.Message).WithDetails(details)
	}
	return err
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, ValidateTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
