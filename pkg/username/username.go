// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package username canonicalizes user handles for storage and lookup.
//
// # Usage
//
// Usernames are unique per account and case-insensitive. This package folds
// every handle into a single canonical form so that "Astra", "astra" and a
// visually identical compatibility variant all resolve to the same account.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonical converts an arbitrary Unicode handle into its stored form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKC (folds compatibility variants: ﬁ → fi, ① → 1).
// 2. Converts to lowercase.
// 3. Trims surrounding whitespace.
func Canonical(handle string) string {
	result := norm.NFKC.String(handle)
	result = strings.ToLower(result)
	return strings.TrimSpace(result)
}

// IsValid reports whether a canonical handle is acceptable for registration.
//
// Handles are 3-30 runes of letters, digits, '.', '_' or '-', and must start
// with a letter or digit.
func IsValid(handle string) bool {
	runes := []rune(handle)
	if len(runes) < 3 || len(runes) > 30 {
		return false
	}

	if !unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0]) {
		return false
	}

	for _, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}

	return true
}
