// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stakeledger/ledger/log"
)

var logger = log.WithContext("pkg", "state")

// NetworkKey is the single key of the network context mapping.
type NetworkKey struct{}

func (NetworkKey) Bytes() []byte { return []byte("network") }

// NetworkContext holds the network wide staking state.
type NetworkContext struct {
	StakingRewardsActivated bool
	PendingRewards          uint64
	LastPeriodEnded         uint64
}

func (n *NetworkContext) AreRewardsActivated() bool {
	return n.StakingRewardsActivated
}

func (n *NetworkContext) SetStakingRewardsActivated(activated bool) {
	n.StakingRewardsActivated = activated
}

// IncreasePendingRewards records rewards earned but not yet paid.
func (n *NetworkContext) IncreasePendingRewards(amount int64) {
	if amount <= 0 {
		return
	}
	n.PendingRewards += uint64(amount)
}

// DecreasePendingRewards records a payment, clamping at zero.
func (n *NetworkContext) DecreasePendingRewards(amount int64) {
	if amount <= 0 {
		return
	}
	if uint64(amount) > n.PendingRewards {
		logger.Error("pending rewards decreased below zero, clamping", "pending", n.PendingRewards, "amount", amount)
		n.PendingRewards = 0
		return
	}
	n.PendingRewards -= uint64(amount)
}

func (n *NetworkContext) PendingRewardsAmount() int64 {
	return int64(n.PendingRewards)
}
