package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE(t *testing.T) {
	const op Op = "queryService.Ask"

	err := E(op, Database, Parameter("connection"), Str("connection refused"))

	var e *Error
	require.ErrorAs(t, err, &e)

	assert.Equal(t, op, e.Op)
	assert.Equal(t, Database, e.Kind)
	assert.Equal(t, Parameter("connection"), e.Param)
	assert.Equal(t, "connection refused", err.Error())
}

func TestEWrapsPreviousError(t *testing.T) {
	inner := E(Op("storage.GetConnection"), Database, Str("no rows"))
	outer := E(Op("queryService.Ask"), inner)

	var e *Error
	require.ErrorAs(t, outer, &e)

	// The outer error inherits the kind from the wrapped error.
	assert.Equal(t, Database, e.Kind)
	assert.Equal(t, "no rows", outer.Error())
}

func TestKindIs(t *testing.T) {
	err := E(Op("connectionStorage.GetConnection"), NotExist, Str("not found"))
	wrapped := E(Op("connectionService.Get"), err)

	assert.True(t, KindIs(NotExist, err))
	assert.True(t, KindIs(NotExist, wrapped))
	assert.False(t, KindIs(Database, err))
	assert.False(t, KindIs(NotExist, errors.New("plain")))
	assert.False(t, KindIs(NotExist, nil))
}

func TestOpStack(t *testing.T) {
	inner := E(Op("storage.AddHistoryEntry"), Database, Str("constraint violation"))
	middle := E(Op("historyService.Record"), inner)
	outer := E(Op("queryService.Ask"), middle)

	assert.Equal(t, []string{
		"queryService.Ask",
		"historyService.Record",
		"storage.AddHistoryEntry",
	}, OpStack(outer))
}

func TestTopError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := E(Op("outer"), E(Op("inner"), Database, cause))

	assert.Equal(t, cause, TopError(err))
	assert.Equal(t, cause, TopError(cause))
}

func TestMatch(t *testing.T) {
	err := E(Op("schemaService.GetSchema"), NotExist, Parameter("connection"), Str("unknown connection"))

	assert.True(t, Match(E(NotExist), err))
	assert.True(t, Match(E(Op("schemaService.GetSchema"), NotExist), err))
	assert.False(t, Match(E(Database), err))
	assert.False(t, Match(E(Parameter("query")), err))
	assert.False(t, Match(E(NotExist), errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "database_error", Database.String())
	assert.Equal(t, "item_does_not_exist", NotExist.String())
	assert.Equal(t, "unknown_error_kind", Kind(200).String())
}
