package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaseMeta(t *testing.T) {
	m, err := ParseCaseMeta(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = ParseCaseMeta(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = ParseCaseMeta(json.RawMessage(`{"bank":"kbank","slipUrl":"https://cdn.example.com/s.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "kbank", m.Bank)

	_, err = ParseCaseMeta(json.RawMessage(`{"bank":"kbank","extra":1}`))
	assert.ErrorIs(t, err, ErrInvalidMeta)

	_, err = ParseCaseMeta(json.RawMessage(`{"slipUrl":"not a url"}`))
	assert.ErrorIs(t, err, ErrInvalidMeta)
}

func TestCaseMetaRoundTrip(t *testing.T) {
	raw, err := (&CaseMeta{UserID: "U1"}).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"U1"}`, string(raw))

	item := CaseItem{Meta: raw}
	m, err := item.GetMeta()
	require.NoError(t, err)
	assert.Equal(t, "U1", m.UserID)
}
