// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/stakeledger/ledger/state"
)

// RewardCalculator computes stake rewards from the nodes' reward sum histories
// and totals what a transaction paid.
type RewardCalculator struct {
	periods     *PeriodManager
	infos       *StakeInfoManager
	rewardsPaid int64
}

func NewRewardCalculator(periods *PeriodManager, infos *StakeInfoManager) *RewardCalculator {
	return &RewardCalculator{periods: periods, infos: infos}
}

// Reset starts a new transaction.
func (c *RewardCalculator) Reset() {
	c.rewardsPaid = 0
}

// ComputePendingReward returns the reward account has earned since its stake period start.
func (c *RewardCalculator) ComputePendingReward(account *state.Account) (int64, error) {
	effectiveStart := c.periods.EffectivePeriod(account.StakePeriodStart)
	if !c.periods.IsRewardable(effectiveStart) {
		return 0, nil
	}
	node, ok := account.StakedNode()
	if !ok {
		return 0, nil
	}
	info, err := c.infos.StakeInfoFor(node)
	if err != nil {
		return 0, err
	}
	reward := c.ComputeRewardFromDetails(account, info, c.periods.CurrentStakePeriod(), effectiveStart)
	if account.DeclineReward {
		return 0, nil
	}
	return reward, nil
}

// ApplyReward credits reward to the pending balance, unless the account
// declines rewards; it reports whether the reward was credited.
func (c *RewardCalculator) ApplyReward(reward int64, account *state.Account, diff *state.AccountDiff) bool {
	if reward > 0 {
		declined := diff.FinalDeclineReward(nil)
		if account != nil {
			declined = account.DeclineReward
		}
		if declined {
			return false
		}
		diff.AdjustBalance(account, reward)
		c.rewardsPaid += reward
	}
	return true
}

func (c *RewardCalculator) RewardsPaidInThisTxn() int64 {
	return c.rewardsPaid
}

// EstimatePendingRewards estimates the reward account would get now, by wall clock.
func (c *RewardCalculator) EstimatePendingRewards(account *state.Account, info *state.StakingInfo) int64 {
	effectiveStart := c.periods.EffectivePeriod(account.StakePeriodStart)
	if !c.periods.IsEstimatedRewardable(effectiveStart) {
		return 0
	}
	reward := c.ComputeRewardFromDetails(account, info, c.periods.EstimatedCurrentStakePeriod(), effectiveStart)
	if account.DeclineReward {
		return 0
	}
	return reward
}

func (c *RewardCalculator) EpochSecondAtStartOfPeriod(period int64) int64 {
	return c.periods.EpochSecondAtStartOfPeriod(period)
}

// ComputeRewardFromDetails pays whole units of stake the per unit reward sums
// between effectiveStart and the last finished period.
func (c *RewardCalculator) ComputeRewardFromDetails(account *state.Account, info *state.StakingInfo, currentPeriod, effectiveStart int64) int64 {
	if info == nil {
		return 0
	}
	history := info.RewardSumHistory
	rewardFrom := int(currentPeriod - 1 - effectiveStart)
	if rewardFrom <= 0 {
		return 0
	}
	if rewardFrom >= len(history) {
		rewardFrom = len(history) - 1
	}
	if account.StakeAtStartOfLastRewardedPeriod != state.NotRewardedSinceLastMetaChange {
		// the period the stake last changed in pays on the stake remembered then,
		// later periods on the current stake
		return account.StakeAtStartOfLastRewardedPeriod/state.UnitsToTiny*(history[rewardFrom-1]-history[rewardFrom]) +
			account.TotalStake()/state.UnitsToTiny*(history[0]-history[rewardFrom-1])
	}
	return account.TotalStake() / state.UnitsToTiny * (history[0] - history[rewardFrom])
}
