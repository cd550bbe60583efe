// Package models holds the wire records shared by the paginated fetcher and
// the stats engine.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Account is one account-abstraction account as reported by the indexer.
// On the wire the address arrives as a nested object whose "hash" field is
// the identity; it serializes back out as a plain string.
type Account struct {
	Address           string `json:"address"`
	CreationTimestamp string `json:"creation_timestamp"`
	GasUsed           uint64 `json:"gas_used"`
}

// UserOp is one user operation as reported by the indexer. The fee arrives
// as a JSON string and is parsed to uint64.
type UserOp struct {
	Sender    string `json:"address"`
	GasUsed   uint64 `json:"fee"`
	Timestamp string `json:"timestamp"`
}

// addressHash extracts the "hash" field from a nested address object.
// A missing hash is a decode failure, not a default.
func addressHash(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing field address")
	}
	var addr struct {
		Hash *string `json:"hash"`
	}
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", fmt.Errorf("decoding address: %w", err)
	}
	if addr.Hash == nil {
		return "", fmt.Errorf("missing field address.hash")
	}
	return *addr.Hash, nil
}

// UnmarshalJSON implements the indexer's account shape: nested address.hash,
// creation_timestamp that may be null or absent, gas_used defaulting to 0.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw struct {
		Address           json.RawMessage `json:"address"`
		CreationTimestamp *string         `json:"creation_timestamp"`
		GasUsed           *uint64         `json:"gas_used"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	hash, err := addressHash(raw.Address)
	if err != nil {
		return err
	}
	a.Address = hash

	// null and absent both normalize to empty
	if raw.CreationTimestamp != nil {
		a.CreationTimestamp = *raw.CreationTimestamp
	} else {
		a.CreationTimestamp = ""
	}

	if raw.GasUsed != nil {
		a.GasUsed = *raw.GasUsed
	} else {
		a.GasUsed = 0
	}

	return nil
}

// UnmarshalJSON implements the indexer's user-op shape: nested address.hash
// as the sender and a string fee parsed to uint64.
func (u *UserOp) UnmarshalJSON(data []byte) error {
	var raw struct {
		Address   json.RawMessage `json:"address"`
		Fee       *string         `json:"fee"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	hash, err := addressHash(raw.Address)
	if err != nil {
		return err
	}
	u.Sender = hash

	if raw.Fee == nil {
		return fmt.Errorf("missing field fee")
	}
	gas, err := strconv.ParseUint(*raw.Fee, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing fee %q as uint64: %w", *raw.Fee, err)
	}
	u.GasUsed = gas

	u.Timestamp = raw.Timestamp
	return nil
}
