// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeledger/ledger/entity"
)

// StakingInfo is the stake bookkeeping of one node.
type StakingInfo struct {
	Node                      entity.NodeID
	MinStake                  int64
	MaxStake                  int64
	StakeToReward             int64
	StakeToNotReward          int64
	StakeRewardStart          int64
	UnclaimedStakeRewardStart int64
	Stake                     int64
	// RewardSumHistory[0] is the running sum of per unit rewards up to the
	// last finished period, RewardSumHistory[i] the sum i periods earlier.
	RewardSumHistory []int64
}

// NewStakingInfo returns the info of a node keeping numStoredPeriods of history.
func NewStakingInfo(node entity.NodeID, minStake, maxStake int64, numStoredPeriods int) *StakingInfo {
	return &StakingInfo{
		Node:             node,
		MinStake:         minStake,
		MaxStake:         maxStake,
		RewardSumHistory: make([]int64, numStoredPeriods+1),
	}
}

// ClearRewardSumHistory zeroes the history.
func (s *StakingInfo) ClearRewardSumHistory() {
	clear(s.RewardSumHistory)
}

// UpdateRewardSumHistory shifts the history by one period and credits rate
// per unit for the period just finished. The rate is capped at maxRate, and
// zeroed when requireMinStake is set and the node's reward stake is below its minimum.
func (s *StakingInfo) UpdateRewardSumHistory(rate, maxRate int64, requireMinStake bool) int64 {
	h := s.RewardSumHistory
	if len(h) == 0 {
		return 0
	}
	dropped := h[len(h)-1]
	for i := len(h) - 1; i > 0; i-- {
		h[i] = h[i-1] - dropped
	}
	h[0] -= dropped

	nodeRate := int64(0)
	if !requireMinStake || s.StakeToReward >= s.MinStake {
		nodeRate = rate
	}
	nodeRate = min(nodeRate, maxRate)
	h[0] += nodeRate
	return nodeRate
}

// ReviewElectionsAndRecomputeStakes clamps the node's consensus stake to its
// bounds and returns the new StakeRewardStart.
func (s *StakingInfo) ReviewElectionsAndRecomputeStakes() int64 {
	total := s.StakeToReward + s.StakeToNotReward
	switch {
	case total > s.MaxStake && s.MaxStake > 0:
		s.Stake = s.MaxStake
	case total < s.MinStake:
		s.Stake = 0
	default:
		s.Stake = total
	}
	return s.StakeToReward
}

type stakingInfoRLP struct {
	Node                      entity.NodeID
	MinStake                  uint64
	MaxStake                  uint64
	StakeToReward             uint64
	StakeToNotReward          uint64
	StakeRewardStart          uint64
	UnclaimedStakeRewardStart uint64
	Stake                     uint64
	RewardSumHistory          []uint64
}

func (s *StakingInfo) EncodeRLP(w io.Writer) error {
	history := make([]uint64, len(s.RewardSumHistory))
	for i, v := range s.RewardSumHistory {
		history[i] = uint64(v)
	}
	return rlp.Encode(w, &stakingInfoRLP{
		Node:                      s.Node,
		MinStake:                  uint64(s.MinStake),
		MaxStake:                  uint64(s.MaxStake),
		StakeToReward:             uint64(s.StakeToReward),
		StakeToNotReward:          uint64(s.StakeToNotReward),
		StakeRewardStart:          uint64(s.StakeRewardStart),
		UnclaimedStakeRewardStart: uint64(s.UnclaimedStakeRewardStart),
		Stake:                     uint64(s.Stake),
		RewardSumHistory:          history,
	})
}

func (s *StakingInfo) DecodeRLP(st *rlp.Stream) error {
	var r stakingInfoRLP
	if err := st.Decode(&r); err != nil {
		return err
	}
	history := make([]int64, len(r.RewardSumHistory))
	for i, v := range r.RewardSumHistory {
		history[i] = int64(v)
	}
	*s = StakingInfo{
		Node:                      r.Node,
		MinStake:                  int64(r.MinStake),
		MaxStake:                  int64(r.MaxStake),
		StakeToReward:             int64(r.StakeToReward),
		StakeToNotReward:          int64(r.StakeToNotReward),
		StakeRewardStart:          int64(r.StakeRewardStart),
		UnclaimedStakeRewardStart: int64(r.UnclaimedStakeRewardStart),
		Stake:                     int64(r.Stake),
		RewardSumHistory:          history,
	}
	return nil
}
