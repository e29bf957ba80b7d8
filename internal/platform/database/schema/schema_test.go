// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
)

/*
TestQualify verifies aliasing of select lists.
*/
func TestQualify(t *testing.T) {
	assert.Equal(t, "c.id, c.name", schema.Qualify("c", schema.CoreCategory.ID, schema.CoreCategory.Name))
	assert.Equal(t, "id, slug", schema.Qualify("", schema.CoreTag.ID, schema.CoreTag.Slug))
	assert.Len(t, schema.CorePost.Columns(), 19)
}
