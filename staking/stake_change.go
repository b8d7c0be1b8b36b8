// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/state"
)

// StakeChangeManager moves stake between nodes and enrolls stakees into change sets.
type StakeChangeManager struct {
	infos    *StakeInfoManager
	accounts *state.Accounts
}

func NewStakeChangeManager(infos *StakeInfoManager, accounts *state.Accounts) *StakeChangeManager {
	return &StakeChangeManager{infos: infos, accounts: accounts}
}

// WithdrawStake removes amount from node's reward or non-reward stake.
func (m *StakeChangeManager) WithdrawStake(node entity.NodeID, amount int64, declinedReward bool) error {
	info, err := m.infos.MutableStakeInfoFor(node)
	if err != nil {
		return err
	}
	if declinedReward {
		info.StakeToNotReward = clampedSub(node, "stakeToNotReward", info.StakeToNotReward, amount)
	} else {
		info.StakeToReward = clampedSub(node, "stakeToReward", info.StakeToReward, amount)
	}
	return nil
}

// AwardStake adds amount to node's reward or non-reward stake.
func (m *StakeChangeManager) AwardStake(node entity.NodeID, amount int64, declinedReward bool) error {
	info, err := m.infos.MutableStakeInfoFor(node)
	if err != nil {
		return err
	}
	if declinedReward {
		info.StakeToNotReward += amount
	} else {
		info.StakeToReward += amount
	}
	return nil
}

func clampedSub(node entity.NodeID, field string, cur, amount int64) int64 {
	if amount > cur {
		logger.Warn("node stake would go negative, clamping to zero", "node", node, "field", field, "cur", cur, "amount", amount)
		return 0
	}
	return cur - amount
}

// FindOrAdd returns the index of num in cs, enrolling it with no changes if absent.
func (m *StakeChangeManager) FindOrAdd(num entity.Num, cs *state.AccountChangeSet) (int, error) {
	return cs.FindOrAdd(num, func(num entity.Num) (*state.Account, *state.AccountDiff, error) {
		account, err := m.accounts.Get(num)
		if err != nil {
			return nil, nil, err
		}
		return account, &state.AccountDiff{}, nil
	})
}

// InitializeAllStakingStartsTo sets the stake period start of every account
// staking to a node.
func (m *StakeChangeManager) InitializeAllStakingStartsTo(period int64) error {
	var stakers []entity.Num
	err := m.accounts.ForEach(func(a *state.Account) error {
		if a.StakedID < 0 && !a.Deleted {
			stakers = append(stakers, a.Num)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, num := range stakers {
		account, err := m.accounts.GetForModify(num)
		if err != nil {
			return err
		}
		account.StakePeriodStart = period
	}
	logger.Debug("initialized staking starts", "period", period, "accounts", len(stakers))
	return nil
}
