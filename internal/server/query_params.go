package server

import (
	"strconv"
	"strings"
)

// parseID reads a positive integer path parameter.
func parseID(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, invalidIDError()
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, invalidIDError()
	}
	return parsed, nil
}

func invalidIDError() error {
	return newValidationError("id", "invalid_id", "id must be a positive integer")
}
