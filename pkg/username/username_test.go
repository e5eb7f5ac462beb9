// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package username

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "AstraVid", "astravid"},
		{"trims whitespace", "  astra  ", "astra"},
		{"folds compatibility forms", "ﬁlmfan", "filmfan"},
		{"folds circled digits", "user①", "user1"},
		{"already canonical", "plain_user-01", "plain_user-01"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, Canonical(testCase.input))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("astra"))
	assert.True(t, IsValid("a1.b_c-d"))

	assert.False(t, IsValid("ab"), "too short")
	assert.False(t, IsValid("_leading"), "must start alphanumeric")
	assert.False(t, IsValid("has space"))
	assert.False(t, IsValid("emoji😀name"))
}
