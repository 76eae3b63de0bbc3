package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("account store unreachable"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("account store unreachable"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestOp(t *testing.T) {
	attr := sl.Op("session.OnAuthenticated")

	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "session.OnAuthenticated", attr.Value.String())
}
