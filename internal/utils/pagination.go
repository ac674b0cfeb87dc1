// Package utils holds small parsing helpers shared by the HTTP handlers.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, returning def when s is empty or
// not a valid int. Whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampPage parses page and page size query values. The page is at least 1;
// the size defaults to defSize and stays within [1, maxSize]. A maxSize of
// zero or less leaves the size uncapped.
func ClampPage(pageStr, sizeStr string, defSize, maxSize int) (page, size int) {
	page = max(AtoiDefault(pageStr, 1), 1)
	size = max(AtoiDefault(sizeStr, defSize), 1)
	if maxSize > 0 {
		size = min(size, maxSize)
	}
	return page, size
}
