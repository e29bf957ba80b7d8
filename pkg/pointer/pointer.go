// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer converts between values and the optional pointer fields
// used by partial updates and nullable columns.
package pointer

// To returns the address of a copy of value.
func To[T any](value T) *T { return &value }

// Val dereferences ptr, yielding the zero value for nil.
func Val[T any](ptr *T) T {
	var zero T
	return Fallback(ptr, zero)
}

// Fallback dereferences ptr, yielding def for nil.
func Fallback[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}
