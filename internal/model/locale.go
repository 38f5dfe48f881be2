// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a base language code (ISO 639-1) such as "fa", "en" or "ar".
type Locale string

// Default site locales.
const (
	LocaleFa Locale = "fa"
	LocaleEn Locale = "en"
	LocaleAr Locale = "ar"
)

// DefaultLocales is the locale set used when none is configured.
var DefaultLocales = []Locale{LocaleFa, LocaleEn, LocaleAr}

// String implements fmt.Stringer.
func (l Locale) String() string {
	return string(l)
}

// IsRTL reports whether the locale is written right-to-left.
func (l Locale) IsRTL() bool {
	switch l {
	case LocaleFa, LocaleAr, "he", "ur":
		return true
	}
	return false
}

// ParseLocale parses a BCP 47 tag and reduces it to its base language.
// "EN-us" becomes "en".
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty locale")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	base, conf := tag.Base()
	if tag == language.Und || conf == language.No {
		return "", fmt.Errorf("invalid locale %q", s)
	}
	return Locale(base.String()), nil
}

// LocaleSet is the closed set of locales the catalog accepts.
type LocaleSet struct {
	locales []Locale
	index   map[Locale]struct{}
	matcher language.Matcher
}

// NewLocaleSet builds a set from locale codes. The first code is the
// fallback used by Match.
func NewLocaleSet(codes ...string) (*LocaleSet, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one locale is required")
	}

	s := &LocaleSet{index: make(map[Locale]struct{}, len(codes))}
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		loc, err := ParseLocale(code)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[loc]; dup {
			continue
		}
		s.index[loc] = struct{}{}
		s.locales = append(s.locales, loc)
		tags = append(tags, language.Make(string(loc)))
	}
	s.matcher = language.NewMatcher(tags)
	return s, nil
}

// MustLocaleSet is like NewLocaleSet but panics on error.
func MustLocaleSet(locales ...Locale) *LocaleSet {
	codes := make([]string, len(locales))
	for i, l := range locales {
		codes[i] = string(l)
	}
	s, err := NewLocaleSet(codes...)
	if err != nil {
		panic(err)
	}
	return s
}

// Contains reports whether loc is part of the set.
func (s *LocaleSet) Contains(loc Locale) bool {
	_, ok := s.index[loc]
	return ok
}

// Resolve parses code and checks that the result belongs to the set.
func (s *LocaleSet) Resolve(code string) (Locale, error) {
	loc, err := ParseLocale(code)
	if err != nil {
		return "", err
	}
	if !s.Contains(loc) {
		return "", fmt.Errorf("unsupported locale %q", code)
	}
	return loc, nil
}

// Locales returns the locales in configuration order.
func (s *LocaleSet) Locales() []Locale {
	out := make([]Locale, len(s.locales))
	copy(out, s.locales)
	return out
}

// Match picks the best locale for an Accept-Language header value.
func (s *LocaleSet) Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.locales[0]
	}
	_, idx, _ := s.matcher.Match(tags...)
	return s.locales[idx]
}

// SortedLocales returns the keys of a translation map in a stable order.
func SortedLocales[T any](m map[Locale]T) []Locale {
	keys := make([]Locale, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
