// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"time"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/state"
)

// GenesisAccount is an account present from the start.
type GenesisAccount struct {
	Num           entity.Num `yaml:"num"`
	Balance       int64      `yaml:"balance"`
	StakedID      int64      `yaml:"stakedId"`
	DeclineReward bool       `yaml:"declineReward"`
}

// GenesisNode is a node accounts may stake to from the start.
type GenesisNode struct {
	ID       entity.NodeID `yaml:"id"`
	MinStake int64         `yaml:"minStake"`
	MaxStake int64         `yaml:"maxStake"`
}

// Genesis is the initial state of a ledger.
type Genesis struct {
	Time     time.Time        `yaml:"time"`
	Nodes    []GenesisNode    `yaml:"nodes"`
	Accounts []GenesisAccount `yaml:"accounts"`
}

// Seed writes the initial state of an empty ledger: nodes, accounts, and the
// stake each receives from its stakers. Rewards are activated at once if the
// funding account already holds the start threshold.
func (l *Ledger) Seed(g *Genesis) error {
	if l.pending != nil {
		return ErrInTransaction
	}
	if n, err := l.stores.Accounts.Size(); err != nil {
		return err
	} else if n > 0 {
		return errors.New("ledger already seeded")
	}
	l.txn.Reset(g.Time)

	if err := l.seed(g); err != nil {
		l.stores.Context.Revert()
		return err
	}
	if err := l.stores.Context.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	logger.Info("ledger seeded", "accounts", len(g.Accounts), "nodes", len(g.Nodes), "rewardsActivated", l.Network().AreRewardsActivated())
	return nil
}

func (l *Ledger) seed(g *Genesis) error {
	for _, n := range g.Nodes {
		if err := l.infos.AddNode(n.ID, n.MinStake, n.MaxStake); err != nil {
			return err
		}
	}

	accounts := make(map[entity.Num]*state.Account, len(g.Accounts))
	for _, ga := range g.Accounts {
		if ga.Num == entity.Missing {
			return errors.New("account number zero is reserved")
		}
		if _, dup := accounts[ga.Num]; dup {
			return errors.Errorf("account %v listed twice", ga.Num)
		}
		if ga.Balance < 0 {
			return errors.Errorf("account %v has a negative balance", ga.Num)
		}
		account := state.NewAccount(ga.Num)
		account.Balance = ga.Balance
		account.StakedID = ga.StakedID
		account.DeclineReward = ga.DeclineReward
		accounts[ga.Num] = account
		if err := l.stores.Accounts.Put(ga.Num, account); err != nil {
			return err
		}
	}

	for _, account := range accounts {
		stakee, ok := account.StakedAccount()
		if !ok {
			continue
		}
		target := accounts[stakee]
		if target == nil || stakee == account.Num {
			return errors.Errorf("account %v stakes to invalid account %v", account.Num, stakee)
		}
		target.StakedToMe += state.RoundedToUnit(account.Balance)
	}

	for _, account := range accounts {
		node, ok := account.StakedNode()
		if !ok {
			continue
		}
		if err := l.stakes.AwardStake(node, state.RoundedToUnit(account.TotalStake()), account.DeclineReward); err != nil {
			return err
		}
	}

	nodes, err := l.infos.Nodes()
	if err != nil {
		return err
	}
	for _, node := range nodes {
		info, err := l.infos.MutableStakeInfoFor(node)
		if err != nil {
			return err
		}
		info.StakeRewardStart = info.ReviewElectionsAndRecomputeStakes()
	}

	network, err := l.stores.NetworkForModify()
	if err != nil {
		return err
	}
	staked := l.cfg.Staking
	if funding := accounts[staked.FundingAccount]; staked.Enabled && funding != nil && funding.Balance >= staked.StartThreshold {
		network.SetStakingRewardsActivated(true)
		return l.stakes.InitializeAllStakingStartsTo(l.periods.CurrentStakePeriod())
	}
	return nil
}
