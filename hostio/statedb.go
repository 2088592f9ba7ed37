// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/vm"
)

// DefaultProgramAddress is the account whose storage a StateDBHost uses when none is configured.
var DefaultProgramAddress = common.HexToAddress("0xA4B05FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF")

// StateDBHost maps slots onto the storage of a single account in a geth state database,
// the way a program's SLOAD and SSTORE reach the state trie.
type StateDBHost struct {
	account common.Address
	db      vm.StateDB
}

func NewStateDBHost(statedb vm.StateDB, account common.Address) *StateDBHost {
	if statedb.GetNonce(account) == 0 {
		statedb.SetNonce(account, 1) // keeps geth from treating the account as empty
	}
	return &StateDBHost{
		account: account,
		db:      statedb,
	}
}

// NewMemoryBackedStateDB creates an empty statedb over geth's in-memory database.
func NewMemoryBackedStateDB() vm.StateDB {
	raw := rawdb.NewMemoryDatabase()
	db := state.NewDatabase(raw)
	statedb, err := state.New(common.Hash{}, db, nil)
	if err != nil {
		panic("failed to init empty statedb")
	}
	return statedb
}

func (h *StateDBHost) LoadWord(slot common.Hash) (common.Hash, error) {
	return h.db.GetState(h.account, slot), nil
}

func (h *StateDBHost) StoreWord(slot, value common.Hash) error {
	h.db.SetState(h.account, slot, value)
	return nil
}

func (h *StateDBHost) Account() common.Address {
	return h.account
}
