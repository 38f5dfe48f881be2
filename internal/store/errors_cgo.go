// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build cgo

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func isMattnBusy(err error) bool {
	var ce sqlite3.Error
	if errors.As(err, &ce) {
		return ce.Code == sqlite3.ErrBusy || ce.Code == sqlite3.ErrLocked
	}
	return false
}

func isMattnUniqueViolation(err error) bool {
	var ce sqlite3.Error
	if errors.As(err, &ce) {
		return ce.ExtendedCode == sqlite3.ErrConstraintUnique ||
			ce.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
