// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// JoinFullName builds an owner-qualified full name the way ResolveFullName
// does, joining owner and leaf with ".". An empty owner yields leaf alone.
func JoinFullName(owner, leaf string) string {
	if owner == "" {
		return leaf
	}

	return owner + "." + leaf
}

// SplitFullName splits a full name into its owner prefix and leaf name. A
// name with no "." returns an empty owner.
func SplitFullName(fullName string) (owner, leaf string) {
	i := strings.LastIndexByte(fullName, '.')
	if i < 0 {
		return "", fullName
	}

	return fullName[:i], fullName[i+1:]
}

// TrimDefaultPrefix strips a leading "Default__" segment from an owner
// name, matching the convention default-properties export names carry.
func TrimDefaultPrefix(name string) string {
	return strings.TrimPrefix(name, "Default__")
}

// NameMatcher compiles a single glob pattern for Find's name-matching mode,
// built on the same rule matcher the source's compression policy uses.
type NameMatcher struct {
	matcher *pathrules.Matcher
}

// NewNameMatcher compiles pattern into a matcher that reports inclusion for
// names matching it and exclusion otherwise.
func NewNameMatcher(pattern string) (*NameMatcher, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidEntryName)
	}

	rules := []pathrules.Rule{{Action: pathrules.ActionInclude, Pattern: pattern}}

	opts := pathrules.MatcherOptions{DefaultAction: pathrules.ActionExclude}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern %q: %w", pattern, err)
	}

	return &NameMatcher{matcher: matcher}, nil
}

// Match reports whether name is included by the compiled pattern.
func (m *NameMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	return m.matcher.Included(name, false)
}
