// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Locale
		wantErr bool
	}{
		{"plain", "fa", LocaleFa, false},
		{"upper case", "EN", LocaleEn, false},
		{"with region", "en-US", LocaleEn, false},
		{"padded", "  ar ", LocaleAr, false},
		{"empty", "", "", true},
		{"garbage", "not a locale", "", true},
		{"undetermined", "und", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocaleSet(t *testing.T) {
	set, err := NewLocaleSet("fa", "en", "ar", "en")
	if err != nil {
		t.Fatalf("NewLocaleSet: %v", err)
	}

	if got := len(set.Locales()); got != 3 {
		t.Errorf("len(Locales()) = %d, want 3", got)
	}
	if !set.Contains(LocaleAr) {
		t.Error("expected set to contain ar")
	}
	if set.Contains("de") {
		t.Error("expected set not to contain de")
	}

	if _, err := set.Resolve("de"); err == nil {
		t.Error("Resolve(de) should fail")
	}
	if loc, err := set.Resolve("FA"); err != nil || loc != LocaleFa {
		t.Errorf("Resolve(FA) = %q, %v", loc, err)
	}
}

func TestLocaleSet_Match(t *testing.T) {
	set := MustLocaleSet(LocaleFa, LocaleEn, LocaleAr)

	tests := []struct {
		header string
		want   Locale
	}{
		{"", LocaleFa},
		{"en-US,en;q=0.9", LocaleEn},
		{"ar-SA", LocaleAr},
		{"de-DE", LocaleFa},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := set.Match(tt.header); got != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestNewLocaleSet_Empty(t *testing.T) {
	if _, err := NewLocaleSet(); err == nil {
		t.Error("expected error for empty locale set")
	}
}

func TestLocaleIsRTL(t *testing.T) {
	if !LocaleFa.IsRTL() || !LocaleAr.IsRTL() {
		t.Error("fa and ar should be RTL")
	}
	if LocaleEn.IsRTL() {
		t.Error("en should not be RTL")
	}
}

func TestDeletePolicyValid(t *testing.T) {
	if !OnDeleteCascade.Valid() || !OnDeleteOrphan.Valid() {
		t.Error("known policies should be valid")
	}
	if DeletePolicy("restrict").Valid() {
		t.Error("unknown policy should be invalid")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindProduct, KindService, KindNews} {
		if got, ok := ParseKind(string(k)); !ok || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("pages"); ok {
		t.Error("ParseKind(pages) should fail")
	}
}
