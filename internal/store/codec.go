// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

// LegacyListDelimiter separates elements in list columns written before
// lists were stored as JSON arrays.
const LegacyListDelimiter = ","

// EncodeList serializes a list of strings for a TEXT column. Elements are
// stored as given; blank ones are dropped. An empty or nil list encodes
// to "[]".
func EncodeList(items []string) string {
	clean := lo.Filter(items, func(s string, _ int) bool { return !blank(s) })
	if len(clean) == 0 {
		return "[]"
	}
	b, err := json.Marshal(clean)
	if err != nil {
		// []string always marshals
		return "[]"
	}
	return string(b)
}

// DecodeList is the inverse of EncodeList. It never fails: empty input
// yields an empty list, a JSON string array is returned as stored, and a
// value starting with "[" that is not one is kept as a single element.
// Anything else is read as a legacy delimited string.
func DecodeList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return []string{trimmed}
		}
		return lo.Filter(items, func(s string, _ int) bool { return !blank(s) })
	}

	parts := strings.Split(trimmed, LegacyListDelimiter)
	return lo.Compact(lo.Map(parts, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
