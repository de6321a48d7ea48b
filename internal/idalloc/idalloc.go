// Package idalloc assigns small, gap-filling integer task IDs.
package idalloc

import "github.com/tcsenpai/TG-Manager/internal/clierr"

// Next returns the ID for a new task given every ID already in use.
//
// An empty set yields 0. When the existing IDs are exactly 0..n-1 the result
// is n. Otherwise the lowest unused non-negative integer is returned, so IDs
// freed by deletions are reused before the range grows.
func Next(existing []int) int {
	if len(existing) == 0 {
		return 0
	}

	highest := existing[0]
	for _, id := range existing[1:] {
		highest = max(highest, id)
	}
	if highest == len(existing)-1 {
		return len(existing)
	}

	used := make(map[int]struct{}, len(existing))
	for _, id := range existing {
		used[id] = struct{}{}
	}
	for candidate := 0; ; candidate++ {
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

// Assign returns want when it is not already in use, or a DuplicateID error.
// A nil want falls back to Next.
func Assign(existing []int, want *int) (int, error) {
	if want == nil {
		return Next(existing), nil
	}
	for _, id := range existing {
		if id == *want {
			return 0, clierr.Newf(clierr.DuplicateID, "task id %d is already in use", *want).
				WithDetails(map[string]any{"id": *want})
		}
	}
	if *want < 0 {
		return 0, clierr.Newf(clierr.InvalidTaskID, "task id must be non-negative, got %d", *want).
			WithDetails(map[string]any{"id": *want})
	}
	return *want, nil
}
