// ABOUTME: Argument parsing shared by booknotes subcommands
// ABOUTME: Validates numeric ids and splits comma-separated tag lists

package main

import (
	"fmt"
	"strconv"
	"strings"
)

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

// splitTags splits a comma-separated list, dropping empty entries.
func splitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
