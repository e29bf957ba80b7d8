// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package convert parses optional query values where a bad value should mean
// "not set" rather than an error.
package convert

import (
	"strconv"
	"strings"
)

// ToIntD returns raw as an int, or def when it is empty or malformed.
func ToIntD(raw string, def int) int {
	if value, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return value
	}
	return def
}

// ToBool accepts the strconv forms plus "yes" and "on". Anything else is false.
func ToBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on":
		return true
	}
	value, _ := strconv.ParseBool(raw)
	return value
}
