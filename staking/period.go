// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the stake period, reward and per node stake
// bookkeeping used by the commit pipeline.
package staking

import (
	"math"
	"time"

	"github.com/stakeledger/ledger/log"
	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/txn"
)

var logger = log.WithContext("pkg", "staking")

// NetworkFunc returns the network context of the transaction being handled.
type NetworkFunc func() *state.NetworkContext

// PeriodManager maps consensus time to stake periods.
type PeriodManager struct {
	periodSecs       int64
	numStoredPeriods int64
	txn              *txn.Context
	network          NetworkFunc
	now              func() time.Time
}

func NewPeriodManager(periodMins int64, numStoredPeriods int, txnCtx *txn.Context, network NetworkFunc) *PeriodManager {
	return &PeriodManager{
		periodSecs:       periodMins * 60,
		numStoredPeriods: int64(numStoredPeriods),
		txn:              txnCtx,
		network:          network,
		now:              time.Now,
	}
}

// SetClock replaces the wall clock used for estimates.
func (p *PeriodManager) SetClock(now func() time.Time) {
	p.now = now
}

func (p *PeriodManager) periodOf(t time.Time) int64 {
	return t.Unix() / p.periodSecs
}

// CurrentStakePeriod is the period of the current consensus time.
func (p *PeriodManager) CurrentStakePeriod() int64 {
	return p.periodOf(p.txn.ConsensusTime())
}

// EstimatedCurrentStakePeriod is the period of the wall clock, for queries.
func (p *PeriodManager) EstimatedCurrentStakePeriod() int64 {
	return p.periodOf(p.now())
}

// FirstNonRewardableStakePeriod is the earliest period an account may have
// started staking in without earning a reward; MinInt64 before activation.
func (p *PeriodManager) FirstNonRewardableStakePeriod() int64 {
	if !p.network().AreRewardsActivated() {
		return math.MinInt64
	}
	return p.CurrentStakePeriod() - 1
}

func (p *PeriodManager) estimatedFirstNonRewardableStakePeriod() int64 {
	if !p.network().AreRewardsActivated() {
		return math.MinInt64
	}
	return p.EstimatedCurrentStakePeriod() - 1
}

// EffectivePeriod clamps a stake period start to the oldest stored period.
func (p *PeriodManager) EffectivePeriod(stakePeriodStart int64) int64 {
	oldest := p.CurrentStakePeriod() - p.numStoredPeriods
	if stakePeriodStart > -1 && stakePeriodStart < oldest {
		return oldest
	}
	return stakePeriodStart
}

func (p *PeriodManager) IsRewardable(stakePeriodStart int64) bool {
	return stakePeriodStart > -1 && stakePeriodStart < p.FirstNonRewardableStakePeriod()
}

func (p *PeriodManager) IsEstimatedRewardable(stakePeriodStart int64) bool {
	return stakePeriodStart > -1 && stakePeriodStart < p.estimatedFirstNonRewardableStakePeriod()
}

// EpochSecondAtStartOfPeriod returns the unix second a period begins at.
func (p *PeriodManager) EpochSecondAtStartOfPeriod(period int64) int64 {
	return period * p.periodSecs
}

// StartUpdateFor returns the new stake period start of an account, or NA to
// keep the current one. Only accounts staking to a node get one.
func (p *PeriodManager) StartUpdateFor(curStakedID, newStakedID int64, rewarded, stakeMetaChanged bool) int64 {
	if newStakedID < 0 {
		if curStakedID >= 0 || stakeMetaChanged {
			return p.CurrentStakePeriod()
		} else if rewarded {
			return p.CurrentStakePeriod() - 1
		}
	}
	return state.NA
}
