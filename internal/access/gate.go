// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access decides whether a caller may read gated catalog entries.
// Callers are identified by the phone number the login flow verified; a
// caller may read an entry of a gated kind when the phone is allow-listed
// and holds a grant for the entry id, for every entry of that kind
// ("services:*"), or for everything ("*").
package access

import (
	"context"
	"errors"
	"strings"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// WildcardAll grants every gated entry.
const WildcardAll = "*"

// WildcardKind returns the grant target covering every entry of kind.
func WildcardKind(kind model.Kind) string {
	return string(kind) + ":*"
}

// ValidTarget reports whether target names an entry id, WildcardAll or a
// WildcardKind of a known kind.
func ValidTarget(target string) bool {
	if target == "" {
		return false
	}
	if kind, ok := strings.CutSuffix(target, ":*"); ok {
		_, known := model.ParseKind(kind)
		return known
	}
	return true
}

// Registry errors.
var (
	// ErrReadOnly is returned by registry operations on a gate that cannot modify grants.
	ErrReadOnly = errors.New("access: gate is read-only")
	// ErrInvalidInput is returned for an empty phone or an invalid grant target.
	ErrInvalidInput = errors.New("access: invalid input")
	// ErrUnknownPhone is returned when granting to a phone that is not allow-listed.
	ErrUnknownPhone = errors.New("access: phone is not allow-listed")
)

// Gate answers read authorization questions. It never mutates catalog data.
type Gate interface {
	// IsGated reports whether reads of kind require authorization.
	IsGated(kind model.Kind) bool
	// IsAuthorized reports whether caller may read the entry id of kind.
	// An empty caller is never authorized.
	IsAuthorized(ctx context.Context, caller string, kind model.Kind, id string) (bool, error)
}

// Registry manages the allow-list and grants.
type Registry interface {
	AllowPhone(ctx context.Context, phone string) error
	DisablePhone(ctx context.Context, phone string) error
	// Grant lets phone read target: an entry id, WildcardKind or WildcardAll.
	Grant(ctx context.Context, phone, target string) error
	Revoke(ctx context.Context, phone, target string) error
}

// NormalizePhone strips formatting from a phone number, keeping digits and
// a leading '+'. "+98 (912) 000-1111" becomes "+989120001111".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		// Persian and Arabic-Indic digits are stored as ASCII.
		if d, ok := digitValue(r); ok {
			b.WriteByte(byte('0' + d))
		}
	}
	if out := b.String(); out != "+" {
		return out
	}
	return ""
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '۰' && r <= '۹':
		return int(r - '۰'), true
	case r >= '٠' && r <= '٩':
		return int(r - '٠'), true
	}
	return 0, false
}

// kindSet builds a lookup set of gated kinds.
func kindSet(kinds []model.Kind) map[model.Kind]bool {
	set := make(map[model.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
