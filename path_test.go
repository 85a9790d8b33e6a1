// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/upk

package upk

import "testing"

func TestJoinSplitFullName(t *testing.T) {
	cases := []struct {
		owner, leaf, full string
	}{
		{"", "Engine", "Engine"},
		{"Engine", "Default__Engine", "Engine.Default__Engine"},
		{"Engine.Default__Engine", "bNoDefaultParticleCollision", "Engine.Default__Engine.bNoDefaultParticleCollision"},
	}

	for _, c := range cases {
		if got := JoinFullName(c.owner, c.leaf); got != c.full {
			t.Errorf("JoinFullName(%q, %q) = %q, want %q", c.owner, c.leaf, got, c.full)
		}

		owner, leaf := SplitFullName(c.full)
		if owner != c.owner || leaf != c.leaf {
			t.Errorf("SplitFullName(%q) = (%q, %q), want (%q, %q)", c.full, owner, leaf, c.owner, c.leaf)
		}
	}
}

func TestTrimDefaultPrefix(t *testing.T) {
	if got := TrimDefaultPrefix("Default__Engine"); got != "Engine" {
		t.Errorf("TrimDefaultPrefix = %q, want Engine", got)
	}
	if got := TrimDefaultPrefix("Engine"); got != "Engine" {
		t.Errorf("TrimDefaultPrefix = %q, want Engine unchanged", got)
	}
}

func TestNameMatcher(t *testing.T) {
	m, err := NewNameMatcher("Default__*")
	if err != nil {
		t.Fatalf("NewNameMatcher: %v", err)
	}

	if !m.Match("Default__Engine") {
		t.Errorf("expected Default__Engine to match")
	}
	if m.Match("Engine") {
		t.Errorf("did not expect Engine to match")
	}
}

func TestNameMatcherEmptyPattern(t *testing.T) {
	if _, err := NewNameMatcher("   "); err == nil {
		t.Fatal("expected error for empty pattern")
	}
}

func TestNameMatcherNilSafe(t *testing.T) {
	var m *NameMatcher
	if m.Match("anything") {
		t.Fatal("nil matcher should never match")
	}
}
