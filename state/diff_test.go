// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountDiff_Final(t *testing.T) {
	var d AccountDiff
	assert.Equal(t, int64(0), d.FinalBalance(nil))
	assert.Equal(t, int64(0), d.FinalStakedID(nil))
	assert.False(t, d.FinalDeclineReward(nil))
	assert.False(t, d.FinalDeleted(nil))

	a := &Account{Balance: 10, StakedID: -1, DeclineReward: true}
	assert.Equal(t, int64(10), d.FinalBalance(a))
	assert.Equal(t, int64(-1), d.FinalStakedID(a))
	assert.True(t, d.FinalDeclineReward(a))

	d.AdjustBalance(a, 5)
	d.AdjustBalance(a, -2)
	assert.Equal(t, int64(13), d.FinalBalance(a))
	assert.Equal(t, int64(10), a.Balance)

	d.SetDeleted(true)
	assert.True(t, d.IsDeleted())
	assert.Equal(t, "{balance=13 deleted=true}", d.String())

	d.ApplyTo(a)
	assert.Equal(t, int64(13), a.Balance)
	assert.True(t, a.Deleted)
	assert.Equal(t, int64(-1), a.StakedID)
}

func TestAccountDiff_HasStakeMetaChanges(t *testing.T) {
	a := &Account{StakedID: -1}

	tests := []struct {
		name    string
		diff    func(*AccountDiff)
		account *Account
		want    bool
	}{
		{"no changes", func(*AccountDiff) {}, a, false},
		{"balance only", func(d *AccountDiff) { d.SetBalance(3) }, a, false},
		{"same staked id", func(d *AccountDiff) { d.SetStakedID(-1) }, a, false},
		{"new staked id", func(d *AccountDiff) { d.SetStakedID(-2) }, a, true},
		{"same decline", func(d *AccountDiff) { d.SetDeclineReward(false) }, a, false},
		{"new decline", func(d *AccountDiff) { d.SetDeclineReward(true) }, a, true},
		{"created with staked id", func(d *AccountDiff) { d.SetStakedID(0) }, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d AccountDiff
			tt.diff(&d)
			assert.Equal(t, tt.want, d.HasStakeMetaChanges(tt.account))
		})
	}
}

func TestNetworkContext_PendingRewards(t *testing.T) {
	n := &NetworkContext{}
	n.IncreasePendingRewards(100)
	n.IncreasePendingRewards(-5)
	n.DecreasePendingRewards(30)
	assert.Equal(t, int64(70), n.PendingRewardsAmount())

	n.DecreasePendingRewards(500)
	assert.Equal(t, int64(0), n.PendingRewardsAmount())

	assert.False(t, n.AreRewardsActivated())
	n.SetStakingRewardsActivated(true)
	assert.True(t, n.AreRewardsActivated())
}

func TestStakingInfo_UpdateRewardSumHistory(t *testing.T) {
	s := NewStakingInfo(0, 10, 0, 3)
	s.StakeToReward = 10

	assert.Equal(t, int64(5), s.UpdateRewardSumHistory(5, 100, true))
	assert.Equal(t, []int64{5, 0, 0, 0}, s.RewardSumHistory)

	assert.Equal(t, int64(4), s.UpdateRewardSumHistory(7, 4, false))
	assert.Equal(t, []int64{9, 5, 0, 0}, s.RewardSumHistory)

	s.StakeToReward = 1
	assert.Equal(t, int64(0), s.UpdateRewardSumHistory(5, 100, true))
	assert.Equal(t, []int64{9, 9, 5, 0}, s.RewardSumHistory)

	// the oldest sum drops out and everything is rebased on it
	s.UpdateRewardSumHistory(1, 100, false)
	assert.Equal(t, []int64{10, 9, 9, 5}, s.RewardSumHistory)
	s.UpdateRewardSumHistory(1, 100, false)
	assert.Equal(t, []int64{6, 5, 4, 4}, s.RewardSumHistory)

	s.ClearRewardSumHistory()
	assert.Equal(t, []int64{0, 0, 0, 0}, s.RewardSumHistory)
}

func TestStakingInfo_ReviewElections(t *testing.T) {
	s := NewStakingInfo(0, 10, 100, 1)
	s.StakeToReward = 60
	s.StakeToNotReward = 50
	assert.Equal(t, int64(60), s.ReviewElectionsAndRecomputeStakes())
	assert.Equal(t, int64(100), s.Stake)

	s.StakeToNotReward = 0
	s.ReviewElectionsAndRecomputeStakes()
	assert.Equal(t, int64(60), s.Stake)

	s.StakeToReward = 5
	s.ReviewElectionsAndRecomputeStakes()
	assert.Equal(t, int64(0), s.Stake)
}
