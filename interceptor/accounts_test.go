// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interceptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/txn"
)

func TestAccountsCommitInterceptor(t *testing.T) {
	existing := state.NewAccount(1001)
	existing.Balance = 100

	created := &state.AccountDiff{}
	created.SetBalance(30)
	debit := &state.AccountDiff{}
	debit.SetBalance(70)
	untouched := &state.AccountDiff{}
	untouched.SetDeclineReward(true)

	cs := state.NewAccountChangeSet()
	cs.Include(1001, existing, debit)
	cs.Include(1002, nil, created)
	cs.Include(1003, state.NewAccount(1003), untouched)

	sideEffects := txn.NewSideEffectsTracker()
	c := NewAccountsCommitInterceptor(sideEffects)
	require.NoError(t, c.Preview(cs))
	assert.Equal(t, []txn.Payment{{Account: 1001, Amount: -30}, {Account: 1002, Amount: 30}}, sideEffects.HbarChanges())

	sideEffects.Reset()
	created.SetBalance(31)
	assert.ErrorIs(t, c.Preview(cs), ErrNonZeroNetChange)
}
