// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txn

import (
	"sort"

	"github.com/stakeledger/ledger/entity"
)

// Payment is a value amount credited to or debited from an account.
type Payment struct {
	Account entity.Num
	Amount  int64
}

// SideEffectsTracker collects the externally visible effects of a transaction.
type SideEffectsTracker struct {
	rewards []Payment
	changes map[entity.Num]int64
	net     int64
}

func NewSideEffectsTracker() *SideEffectsTracker {
	return &SideEffectsTracker{changes: make(map[entity.Num]int64)}
}

// TrackRewardPayment records a staking reward paid to account.
func (s *SideEffectsTracker) TrackRewardPayment(account entity.Num, amount int64) {
	s.rewards = append(s.rewards, Payment{Account: account, Amount: amount})
}

// PaidRewards returns the rewards paid, in payment order.
func (s *SideEffectsTracker) PaidRewards() []Payment {
	return s.rewards
}

// TrackHbarChange records a balance adjustment of account.
func (s *SideEffectsTracker) TrackHbarChange(account entity.Num, delta int64) {
	s.changes[account] += delta
	s.net += delta
}

// NetHbarChange is the sum of all tracked adjustments.
func (s *SideEffectsTracker) NetHbarChange() int64 {
	return s.net
}

// HbarChanges returns the non-zero adjustments ordered by account.
func (s *SideEffectsTracker) HbarChanges() []Payment {
	out := make([]Payment, 0, len(s.changes))
	for acc, delta := range s.changes {
		if delta != 0 {
			out = append(out, Payment{Account: acc, Amount: delta})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}

func (s *SideEffectsTracker) Reset() {
	s.rewards = s.rewards[:0]
	clear(s.changes)
	s.net = 0
}
