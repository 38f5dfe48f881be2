// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !cgo

package store

// Without cgo the mattn driver is a stub that never returns sqlite3.Error.

func isMattnBusy(error) bool { return false }

func isMattnUniqueViolation(error) bool { return false }
