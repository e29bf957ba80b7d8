// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccount names users.account. Accounts are provisioned by the identity
// service; this module only checks that one exists and is active.
var UserAccount = struct {
	Table    string
	ID       string
	IsActive string
}{
	Table:    "users.account",
	ID:       "id",
	IsActive: "isactive",
}
