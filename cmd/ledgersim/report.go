// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/ledger"
)

type Payment struct {
	Account entity.Num `yaml:"account"`
	Amount  int64      `yaml:"amount"`
}

type StepReport struct {
	Index             int       `yaml:"index"`
	At                time.Time `yaml:"at"`
	Kind              string    `yaml:"kind"`
	Error             string    `yaml:"error,omitempty"`
	Rewards           []Payment `yaml:"rewards,omitempty"`
	Rate              int64     `yaml:"rate,omitempty"`
	NewPendingRewards int64     `yaml:"newPendingRewards,omitempty"`
}

type AccountReport struct {
	Num              entity.Num   `yaml:"num"`
	Balance          int64        `yaml:"balance"`
	StakedID         int64        `yaml:"stakedId,omitempty"`
	StakedToMe       int64        `yaml:"stakedToMe,omitempty"`
	StakePeriodStart int64        `yaml:"stakePeriodStart"`
	DeclineReward    bool         `yaml:"declineReward,omitempty"`
	Deleted          bool         `yaml:"deleted,omitempty"`
	PendingReward    int64        `yaml:"pendingReward,omitempty"`
	Tokens           []entity.Num `yaml:"tokens,flow,omitempty"`
	Nfts             []string     `yaml:"nfts,flow,omitempty"`
}

type NodeReport struct {
	ID               entity.NodeID `yaml:"id"`
	Stake            int64         `yaml:"stake"`
	StakeToReward    int64         `yaml:"stakeToReward"`
	StakeToNotReward int64         `yaml:"stakeToNotReward"`
	StakeRewardStart int64         `yaml:"stakeRewardStart"`
	RewardSumHistory []int64       `yaml:"rewardSumHistory,flow"`
}

type Report struct {
	RewardsActivated bool            `yaml:"rewardsActivated"`
	PendingRewards   int64           `yaml:"pendingRewards"`
	Steps            []StepReport    `yaml:"steps"`
	Accounts         []AccountReport `yaml:"accounts"`
	Nodes            []NodeReport    `yaml:"nodes"`
}

func buildReport(l *ledger.Ledger, steps []StepReport) (*Report, error) {
	network := l.Network()
	r := &Report{
		RewardsActivated: network.AreRewardsActivated(),
		PendingRewards:   network.PendingRewardsAmount(),
		Steps:            steps,
	}

	accounts, err := l.Accounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		ar := AccountReport{
			Num:              a.Num,
			Balance:          a.Balance,
			StakedID:         a.StakedID,
			StakedToMe:       a.StakedToMe,
			StakePeriodStart: a.StakePeriodStart,
			DeclineReward:    a.DeclineReward,
			Deleted:          a.Deleted,
		}
		if !a.Deleted {
			if ar.PendingReward, err = l.PendingReward(a.Num); err != nil {
				return nil, errors.Wrapf(err, "pending reward of %v", a.Num)
			}
		}
		rels, err := l.TokenRelsOf(a.Num)
		if err != nil {
			return nil, errors.Wrapf(err, "token relationships of %v", a.Num)
		}
		for _, rel := range rels {
			ar.Tokens = append(ar.Tokens, rel.Token)
		}
		nfts, err := l.NFTsOf(a.Num)
		if err != nil {
			return nil, errors.Wrapf(err, "nfts of %v", a.Num)
		}
		for _, nft := range nfts {
			ar.Nfts = append(ar.Nfts, nft.ID.String())
		}
		r.Accounts = append(r.Accounts, ar)
	}

	nodes, err := l.Nodes()
	if err != nil {
		return nil, err
	}
	for _, info := range nodes {
		r.Nodes = append(r.Nodes, NodeReport{
			ID:               info.Node,
			Stake:            info.Stake,
			StakeToReward:    info.StakeToReward,
			StakeToNotReward: info.StakeToNotReward,
			StakeRewardStart: info.StakeRewardStart,
			RewardSumHistory: info.RewardSumHistory,
		})
	}
	return r, nil
}

func writeReport(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encode report")
	}
	return enc.Close()
}
