package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserOpUnmarshal(t *testing.T) {
	data := `{"address":{"hash":"0xabc"},"fee":"123456","timestamp":"2025-06-01T12:00:00Z"}`

	var op UserOp
	require.NoError(t, json.Unmarshal([]byte(data), &op))

	assert.Equal(t, "0xabc", op.Sender)
	assert.Equal(t, uint64(123456), op.GasUsed)
	assert.Equal(t, "2025-06-01T12:00:00Z", op.Timestamp)
}

func TestUserOpUnmarshalMissingAddress(t *testing.T) {
	var op UserOp
	err := json.Unmarshal([]byte(`{"fee":"1","timestamp":"2025-06-01T12:00:00Z"}`), &op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field address")
}

func TestUserOpUnmarshalMissingAddressHash(t *testing.T) {
	var op UserOp
	err := json.Unmarshal([]byte(`{"address":{"name":"x"},"fee":"1","timestamp":"t"}`), &op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field address.hash")
}

func TestUserOpUnmarshalNonNumericFee(t *testing.T) {
	var op UserOp
	err := json.Unmarshal([]byte(`{"address":{"hash":"0xabc"},"fee":"abc","timestamp":"t"}`), &op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing fee")
}

func TestUserOpUnmarshalMissingFee(t *testing.T) {
	var op UserOp
	err := json.Unmarshal([]byte(`{"address":{"hash":"0xabc"},"timestamp":"t"}`), &op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field fee")
}

func TestAccountUnmarshal(t *testing.T) {
	data := `{"address":{"hash":"0xdef"},"creation_timestamp":"2025-05-01T00:00:00Z","gas_used":777}`

	var acc Account
	require.NoError(t, json.Unmarshal([]byte(data), &acc))

	assert.Equal(t, "0xdef", acc.Address)
	assert.Equal(t, "2025-05-01T00:00:00Z", acc.CreationTimestamp)
	assert.Equal(t, uint64(777), acc.GasUsed)
}

func TestAccountUnmarshalNullTimestamp(t *testing.T) {
	var acc Account
	require.NoError(t, json.Unmarshal([]byte(`{"address":{"hash":"0x1"},"creation_timestamp":null}`), &acc))
	assert.Equal(t, "", acc.CreationTimestamp)
}

func TestAccountUnmarshalAbsentFieldsDefault(t *testing.T) {
	var acc Account
	require.NoError(t, json.Unmarshal([]byte(`{"address":{"hash":"0x1"}}`), &acc))
	assert.Equal(t, "", acc.CreationTimestamp)
	assert.Equal(t, uint64(0), acc.GasUsed)
}

func TestAccountMarshalAddressAsString(t *testing.T) {
	acc := Account{Address: "0x1", CreationTimestamp: "2025-05-01T00:00:00Z", GasUsed: 5}
	data, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"0x1","creation_timestamp":"2025-05-01T00:00:00Z","gas_used":5}`, string(data))
}
