// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/platform/migration"
)

/*
TestPgxDSN verifies URL schemes are rewritten for the pgx5 driver.
*/
func TestPgxDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/cms", "pgx5://u:p@db:5432/cms"},
		{"postgresql://u:p@db/cms?sslmode=disable", "pgx5://u:p@db/cms?sslmode=disable"},
		{"pgx5://db/cms", "pgx5://db/cms"},
		{"host=db dbname=cms", "host=db dbname=cms"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.PgxDSN(tt.in))
		})
	}
}
