// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/metrics"
	"github.com/stakeledger/ledger/state"
)

var (
	metricNodeStake          = metrics.LazyLoadGaugeVec("staking_node_stake", []string{"node"})
	metricPendingRewards     = metrics.LazyLoadGauge("staking_pending_rewards")
	metricPeriodsEnded       = metrics.LazyLoadCounter("staking_periods_ended_total")
	errUnknownNode           = errors.New("unknown node")
)

// StakeInfoManager keeps the per node stake bookkeeping.
type StakeInfoManager struct {
	infos            *state.StakingInfos
	numStoredPeriods int
}

func NewStakeInfoManager(infos *state.StakingInfos, numStoredPeriods int) *StakeInfoManager {
	return &StakeInfoManager{infos: infos, numStoredPeriods: numStoredPeriods}
}

// AddNode registers a node accounts may stake to.
func (m *StakeInfoManager) AddNode(node entity.NodeID, minStake, maxStake int64) error {
	existing, err := m.infos.Get(node)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Errorf("node %d already exists", node)
	}
	return m.infos.Put(node, state.NewStakingInfo(node, minStake, maxStake, m.numStoredPeriods))
}

// StakeInfoFor returns the info of node for reading, nil if unknown.
func (m *StakeInfoManager) StakeInfoFor(node entity.NodeID) (*state.StakingInfo, error) {
	return m.infos.Get(node)
}

// MutableStakeInfoFor returns the info of node for modification.
func (m *StakeInfoManager) MutableStakeInfoFor(node entity.NodeID) (*state.StakingInfo, error) {
	info, err := m.infos.GetForModify(node)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.Wrapf(errUnknownNode, "node %d", node)
	}
	return info, nil
}

// Nodes returns the ids of all nodes.
func (m *StakeInfoManager) Nodes() ([]entity.NodeID, error) {
	var nodes []entity.NodeID
	err := m.infos.ForEach(func(info *state.StakingInfo) error {
		nodes = append(nodes, info.Node)
		return nil
	})
	return nodes, err
}

// UnclaimRewardsForStakeStart records stake leaving node with rewards it will
// not claim this period, capped at the node's reward stake.
func (m *StakeInfoManager) UnclaimRewardsForStakeStart(node entity.NodeID, amount int64) error {
	info, err := m.MutableStakeInfoFor(node)
	if err != nil {
		return err
	}
	info.UnclaimedStakeRewardStart += amount
	if info.UnclaimedStakeRewardStart > info.StakeRewardStart {
		logger.Warn("unclaimed stake reward start exceeds reward start, capping",
			"node", node,
			"unclaimed", info.UnclaimedStakeRewardStart,
			"start", info.StakeRewardStart)
		info.UnclaimedStakeRewardStart = info.StakeRewardStart
	}
	return nil
}

// ClearAllRewardHistory zeroes every node's reward sum history.
func (m *StakeInfoManager) ClearAllRewardHistory() error {
	nodes, err := m.Nodes()
	if err != nil {
		return err
	}
	for _, node := range nodes {
		info, err := m.MutableStakeInfoFor(node)
		if err != nil {
			return err
		}
		info.ClearRewardSumHistory()
	}
	return nil
}

// PeriodSummary reports what EndStakingPeriod did.
type PeriodSummary struct {
	Rate           int64
	PendingRewards int64
	NodeRates      map[entity.NodeID]int64
}

// EndStakingPeriod closes the current period: every node's reward sum history
// is credited with rate per unit, the rewards now owed to the node's reward
// stake are added to the network's pending rewards, and each node's reward
// stake start is reset for the next period.
func (m *StakeInfoManager) EndStakingPeriod(network *state.NetworkContext, rate int64, requireMinStake bool) (*PeriodSummary, error) {
	nodes, err := m.Nodes()
	if err != nil {
		return nil, err
	}
	summary := &PeriodSummary{Rate: rate, NodeRates: make(map[entity.NodeID]int64, len(nodes))}
	for _, node := range nodes {
		info, err := m.MutableStakeInfoFor(node)
		if err != nil {
			return nil, err
		}
		nodeRate := info.UpdateRewardSumHistory(rate, rate, requireMinStake)
		pending := (info.StakeRewardStart - info.UnclaimedStakeRewardStart) / state.UnitsToTiny * nodeRate
		summary.PendingRewards += pending
		summary.NodeRates[node] = nodeRate

		info.StakeRewardStart = info.ReviewElectionsAndRecomputeStakes()
		info.UnclaimedStakeRewardStart = 0

		metricNodeStake().SetWithLabel(info.Stake, map[string]string{"node": strconv.FormatUint(uint64(node), 10)})
	}
	network.IncreasePendingRewards(summary.PendingRewards)
	metricPendingRewards().Set(network.PendingRewardsAmount())
	metricPeriodsEnded().Add(1)

	logger.Info("staking period ended", "nodes", len(nodes), "rate", rate, "newPending", summary.PendingRewards)
	return summary, nil
}
