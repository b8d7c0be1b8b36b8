// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package interceptor checks and completes the pending account changes of a
// transaction before they are committed, and keeps the per account owner lists
// of token associations and NFTs linked.
package interceptor

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/log"
	"github.com/stakeledger/ledger/metrics"
	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/txn"
)

var (
	logger = log.WithContext("pkg", "interceptor")

	// ErrNonZeroNetChange is returned when the balance changes of a transaction do not sum to zero.
	ErrNonZeroNetChange = errors.New("balance changes do not sum to zero")

	metricChangeSetSize = metrics.LazyLoadHistogram("commit_change_set_size", metrics.BucketChangeSetSize)
)

// AccountsCommitInterceptor records the balance changes of a change set and
// rejects it unless they conserve value.
type AccountsCommitInterceptor struct {
	sideEffects *txn.SideEffectsTracker
}

func NewAccountsCommitInterceptor(sideEffects *txn.SideEffectsTracker) *AccountsCommitInterceptor {
	return &AccountsCommitInterceptor{sideEffects: sideEffects}
}

// Preview tracks every balance change in cs.
func (c *AccountsCommitInterceptor) Preview(cs *state.AccountChangeSet) error {
	n := cs.Size()
	metricChangeSetSize().Observe(int64(n))
	for i := 0; i < n; i++ {
		changes := cs.Changes(i)
		if !changes.HasBalance() {
			continue
		}
		delta := *changes.Balance
		if account := cs.Entity(i); account != nil {
			delta -= account.Balance
		}
		c.sideEffects.TrackHbarChange(cs.ID(i), delta)
	}
	if net := c.sideEffects.NetHbarChange(); net != 0 {
		return errors.Wrapf(ErrNonZeroNetChange, "net change %d", net)
	}
	return nil
}

// Finish has nothing to complete for a plain account.
func (c *AccountsCommitInterceptor) Finish(int, *state.Account) {}
