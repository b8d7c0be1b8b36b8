// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"time"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/staking"
	"github.com/stakeledger/ledger/state"
)

var ErrPeriodAlreadyEnded = errors.New("stake period already ended")

// Open opens the store cfg.Storage names and creates a ledger over it. The
// ledger owns the store.
func Open(cfg config.Config) (*Ledger, error) {
	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	l, err := New(store, cfg)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("failed to close store", "err", cerr)
		}
		return nil, err
	}
	return l, nil
}

// SetClock replaces the wall clock used by PendingReward.
func (l *Ledger) SetClock(now func() time.Time) {
	l.periods.SetClock(now)
}

// EndStakingPeriod closes the stake period before the one now falls in,
// crediting every node's reward history. The rate paid per unit is the
// configured one, reduced so the funding account can cover every reward
// owed, and zero until rewards are activated.
func (l *Ledger) EndStakingPeriod(now time.Time) (*staking.PeriodSummary, error) {
	if err := l.Begin(now); err != nil {
		return nil, err
	}
	summary, err := l.endStakingPeriod()
	if err != nil {
		l.Rollback()
		return nil, err
	}
	if _, err := l.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (l *Ledger) endStakingPeriod() (*staking.PeriodSummary, error) {
	ended := l.periods.CurrentStakePeriod() - 1
	if ended < 0 || (l.network.LastPeriodEnded != 0 && uint64(ended) <= l.network.LastPeriodEnded) {
		return nil, errors.Wrapf(ErrPeriodAlreadyEnded, "period %d", ended)
	}
	rate, err := l.rewardRate()
	if err != nil {
		return nil, err
	}
	summary, err := l.infos.EndStakingPeriod(l.network, rate, l.cfg.Staking.RequireMinStake)
	if err != nil {
		return nil, err
	}
	l.network.LastPeriodEnded = uint64(ended)
	return summary, nil
}

func (l *Ledger) rewardRate() (int64, error) {
	staked := l.cfg.Staking
	if !staked.Enabled || !l.network.AreRewardsActivated() {
		return 0, nil
	}
	funding, err := l.stores.Accounts.Get(staked.FundingAccount)
	if err != nil {
		return 0, err
	}
	if funding == nil {
		return 0, nil
	}
	nodes, err := l.infos.Nodes()
	if err != nil {
		return 0, err
	}
	var units int64
	for _, node := range nodes {
		info, err := l.infos.StakeInfoFor(node)
		if err != nil {
			return 0, err
		}
		units += (info.StakeRewardStart - info.UnclaimedStakeRewardStart) / state.UnitsToTiny
	}
	rate := staked.RewardRate
	if units > 0 {
		available := max(funding.Balance-l.network.PendingRewardsAmount(), 0)
		rate = min(rate, available/units)
	}
	return max(rate, 0), nil
}

// PendingReward estimates the reward num would be paid by a transaction now.
func (l *Ledger) PendingReward(num entity.Num) (int64, error) {
	account, err := l.Account(num)
	if err != nil {
		return 0, err
	}
	if account == nil || account.Deleted {
		return 0, errors.Wrapf(ErrAccountNotFound, "account %v", num)
	}
	node, ok := account.StakedNode()
	if !ok || !l.currentNetwork().AreRewardsActivated() {
		return 0, nil
	}
	info, err := l.infos.StakeInfoFor(node)
	if err != nil {
		return 0, err
	}
	return l.rewards.EstimatePendingRewards(account, info), nil
}
