package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantExprQuotes(t *testing.T) {
	assert.Equal(t, `tenant == "bn9"`, TenantExpr("bn9"))
	assert.Equal(t, `tenant == "a\"b"`, TenantExpr(`a"b`))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "สวั", truncateRunes("สวัสดี", 3))
	assert.Equal(t, "ok", truncateRunes("ok", 3))
}
