// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interceptor

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/lvldb"
	"github.com/stakeledger/ledger/staking"
	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/storage"
	"github.com/stakeledger/ledger/txn"
)

const (
	u          = state.UnitsToTiny
	funding    = entity.Num(800)
	curPeriod  = int64(102)
	periodMins = 1440
)

type fixture struct {
	cfg         config.Staking
	stores      *state.Stores
	txn         *txn.Context
	sideEffects *txn.SideEffectsTracker
	network     *state.NetworkContext
	infos       *staking.StakeInfoManager
	interceptor *StakingAccountsCommitInterceptor
}

func newStores(t *testing.T, virtualNfts bool) *state.Stores {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	ctx, err := storage.NewContext(db, 0)
	require.NoError(t, err)
	return state.NewStores(ctx, virtualNfts)
}

func newFixture(t *testing.T, activated bool) *fixture {
	f := &fixture{
		cfg: config.Staking{
			Enabled:                       true,
			StartThreshold:                1000 * u,
			PeriodMins:                    periodMins,
			RewardHistoryNumStoredPeriods: 3,
			FundingAccount:                funding,
			RewardRate:                    5,
		},
		stores:      newStores(t, false),
		txn:         txn.NewContext(),
		sideEffects: txn.NewSideEffectsTracker(),
	}
	var err error
	f.network, err = f.stores.NetworkForModify()
	require.NoError(t, err)
	f.network.SetStakingRewardsActivated(activated)
	f.network.PendingRewards = 1000

	f.txn.Reset(time.Unix(curPeriod*periodMins*60+10, 0))
	networkFn := func() *state.NetworkContext { return f.network }
	periods := staking.NewPeriodManager(f.cfg.PeriodMins, f.cfg.RewardHistoryNumStoredPeriods, f.txn, networkFn)
	f.infos = staking.NewStakeInfoManager(f.stores.StakingInfos, f.cfg.RewardHistoryNumStoredPeriods)
	f.interceptor = NewStakingAccountsCommitInterceptor(
		f.cfg,
		f.txn,
		f.sideEffects,
		networkFn,
		staking.NewRewardCalculator(periods, f.infos),
		periods,
		f.infos,
		staking.NewStakeChangeManager(f.infos, f.stores.Accounts),
	)

	f.put(t, &state.Account{Num: funding, Balance: 1000 * u, StakePeriodStart: -1, StakeAtStartOfLastRewardedPeriod: -1})
	return f
}

// addNode registers node paying 5 per unit for the last finished period.
func (f *fixture) addNode(t *testing.T, node entity.NodeID, stakeToReward int64) *state.StakingInfo {
	require.NoError(t, f.infos.AddNode(node, 0, 0))
	info, err := f.infos.MutableStakeInfoFor(node)
	require.NoError(t, err)
	info.RewardSumHistory = []int64{5, 0, 0, 0}
	info.StakeToReward = stakeToReward
	info.StakeRewardStart = stakeToReward
	return info
}

func (f *fixture) put(t *testing.T, a *state.Account) {
	require.NoError(t, f.stores.Accounts.Put(a.Num, a))
}

func (f *fixture) account(t *testing.T, num entity.Num) *state.Account {
	a, err := f.stores.Accounts.Get(num)
	require.NoError(t, err)
	return a
}

func staker(num entity.Num, balance, stakedID, start int64) *state.Account {
	a := state.NewAccount(num)
	a.Balance = balance
	a.StakedID = stakedID
	a.StakePeriodStart = start
	return a
}

type change struct {
	num  entity.Num
	diff *state.AccountDiff
}

func balanceTo(num entity.Num, v int64) change {
	d := &state.AccountDiff{}
	d.SetBalance(v)
	return change{num, d}
}

func (f *fixture) changeSet(t *testing.T, changes ...change) *state.AccountChangeSet {
	cs := state.NewAccountChangeSet()
	for _, c := range changes {
		cs.Include(c.num, f.account(t, c.num), c.diff)
	}
	return cs
}

// finished returns a copy of the account at index i with Finish applied.
func (f *fixture) finished(cs *state.AccountChangeSet, i int) state.Account {
	a := *cs.Entity(i)
	f.interceptor.Finish(i, &a)
	return a
}

func TestPreview_TransferToNodeStaker(t *testing.T) {
	f := newFixture(t, true)
	info := f.addNode(t, 0, 10*u)
	f.put(t, staker(1001, 100*u, 0, -1))
	f.put(t, staker(1002, 10*u, entity.NodeID(0).StakedID(), 100))

	cs := f.changeSet(t, balanceTo(1001, 60*u), balanceTo(1002, 50*u))
	require.NoError(t, f.interceptor.Preview(cs), spew.Sdump(cs))

	const reward = 10 * 5
	require.Equal(t, 3, cs.Size())
	assert.Equal(t, funding, cs.ID(2))
	assert.Equal(t, 1000*u-reward, *cs.Changes(2).Balance)
	assert.Equal(t, 50*u+reward, *cs.Changes(1).Balance)
	assert.Equal(t, []txn.Payment{{Account: 1002, Amount: reward}}, f.sideEffects.PaidRewards())
	assert.Equal(t, int64(1000-reward), f.network.PendingRewardsAmount())
	assert.Zero(t, f.sideEffects.NetHbarChange())

	// old stake withdrawn, new stake awarded
	assert.Equal(t, 50*u, info.StakeToReward)

	q := f.finished(cs, 1)
	assert.Equal(t, curPeriod-1, q.StakePeriodStart)
	assert.Equal(t, 10*u, q.StakeAtStartOfLastRewardedPeriod)
	assert.Zero(t, q.StakedToMe)

	p := f.finished(cs, 0)
	assert.Equal(t, int64(-1), p.StakePeriodStart)
	assert.Equal(t, int64(-1), p.StakeAtStartOfLastRewardedPeriod)
}

func TestPreview_RewardPaidOncePerIndex(t *testing.T) {
	f := newFixture(t, true)
	f.addNode(t, 0, 10*u)
	f.put(t, staker(1001, 10*u, entity.NodeID(0).StakedID(), 100))
	f.put(t, staker(1002, 10*u, 0, -1))

	cs := f.changeSet(t, balanceTo(1001, 5*u), balanceTo(1002, 15*u))
	require.NoError(t, f.interceptor.Preview(cs))
	assert.Len(t, f.sideEffects.PaidRewards(), 1)

	// a second look at the same index does not pay again
	require.NoError(t, f.interceptor.payRewardIfPending(0, cs.Entity(0), cs.Changes(0), cs))
	assert.Len(t, f.sideEffects.PaidRewards(), 1)
}

func TestPreview_StakedToMeBalanceChange(t *testing.T) {
	f := newFixture(t, true)
	info := f.addNode(t, 0, 25*u)
	f.put(t, staker(1001, 5*u+3, 1002, -1))
	b := staker(1002, 20*u, entity.NodeID(0).StakedID(), 100)
	b.StakedToMe = 5 * u
	f.put(t, b)
	f.put(t, staker(1003, 10*u, 0, -1))

	cs := f.changeSet(t, balanceTo(1001, 7*u+3), balanceTo(1003, 8*u))
	require.NoError(t, f.interceptor.Preview(cs), spew.Sdump(cs))

	const reward = 25 * 5
	require.Equal(t, 4, cs.Size())
	assert.Equal(t, entity.Num(1002), cs.ID(2))
	assert.Equal(t, funding, cs.ID(3))
	assert.Equal(t, 20*u+reward, *cs.Changes(2).Balance)
	assert.Equal(t, []txn.Payment{{Account: 1002, Amount: reward}}, f.sideEffects.PaidRewards())
	assert.Equal(t, 27*u, info.StakeToReward)

	stakee := f.finished(cs, 2)
	assert.Equal(t, 7*u, stakee.StakedToMe)
	assert.Equal(t, curPeriod-1, stakee.StakePeriodStart)
	assert.Equal(t, 25*u, stakee.StakeAtStartOfLastRewardedPeriod)
}

func TestPreview_SubUnitChangeStillTouchesStakee(t *testing.T) {
	f := newFixture(t, false)
	f.put(t, staker(1001, 5*u+3, 1002, -1))
	b := staker(1002, 0, 0, -1)
	b.StakedToMe = 5 * u
	f.put(t, b)
	f.put(t, staker(1003, 10, 0, -1))

	cs := f.changeSet(t, balanceTo(1001, 5*u+8), balanceTo(1003, 5))
	require.NoError(t, f.interceptor.Preview(cs))

	// rounded delta is zero, but the stakee is enrolled all the same
	require.Equal(t, 3, cs.Size())
	assert.Equal(t, entity.Num(1002), cs.ID(2))
	assert.Equal(t, 5*u, f.interceptor.scratch[2].stakedToMeUpdate)
}

func TestPreview_SwitchStakedAccount(t *testing.T) {
	f := newFixture(t, false)
	info := f.addNode(t, 0, 25*u)
	a := staker(1001, 5*u+3, 1002, -1)
	f.put(t, a)
	b := staker(1002, 20*u, entity.NodeID(0).StakedID(), 100)
	b.StakedToMe = 5 * u
	f.put(t, b)
	f.put(t, staker(1003, 0, 0, -1))

	diff := &state.AccountDiff{}
	diff.SetStakedID(1003)
	cs := f.changeSet(t, change{1001, diff})
	require.NoError(t, f.interceptor.Preview(cs))

	require.Equal(t, 3, cs.Size())
	assert.Empty(t, f.sideEffects.PaidRewards())
	assert.Zero(t, f.finished(cs, 1).StakedToMe)
	assert.Equal(t, 5*u, f.finished(cs, 2).StakedToMe)
	// the stakee's node stake follows its stakedToMe
	assert.Equal(t, 20*u, info.StakeToReward)
}

func TestPreview_StakeMetaChange(t *testing.T) {
	f := newFixture(t, true)
	from := f.addNode(t, 0, 10*u)
	to := f.addNode(t, 1, 0)
	f.put(t, staker(1002, 10*u, entity.NodeID(0).StakedID(), 100))

	diff := &state.AccountDiff{}
	diff.SetStakedID(entity.NodeID(1).StakedID())
	cs := f.changeSet(t, change{1002, diff})
	require.NoError(t, f.interceptor.Preview(cs))

	const reward = 10 * 5
	assert.Equal(t, 10*u+reward, *cs.Changes(0).Balance)
	assert.Zero(t, from.StakeToReward)
	assert.Equal(t, 10*u, from.UnclaimedStakeRewardStart)
	assert.Equal(t, 10*u, to.StakeToReward)

	q := f.finished(cs, 0)
	assert.Equal(t, curPeriod, q.StakePeriodStart)
	assert.Equal(t, state.NotRewardedSinceLastMetaChange, q.StakeAtStartOfLastRewardedPeriod)
}

func TestPreview_DeclinedRewardNotPaid(t *testing.T) {
	f := newFixture(t, true)
	info := f.addNode(t, 0, 0)
	q := staker(1002, 10*u, entity.NodeID(0).StakedID(), 100)
	q.DeclineReward = true
	f.put(t, q)
	f.put(t, staker(1001, 10*u, 0, -1))
	info.StakeToNotReward = 10 * u

	cs := f.changeSet(t, balanceTo(1001, 0), balanceTo(1002, 20*u))
	require.NoError(t, f.interceptor.Preview(cs))

	assert.Equal(t, 2, cs.Size())
	assert.Empty(t, f.sideEffects.PaidRewards())
	assert.Equal(t, 20*u, info.StakeToNotReward)
}

func TestPreview_RedirectsRewardOfDeleted(t *testing.T) {
	f := newFixture(t, true)
	f.addNode(t, 0, 10*u)
	f.put(t, staker(1001, 10*u, entity.NodeID(0).StakedID(), 100))
	f.put(t, staker(1002, u, 0, -1))
	f.txn.RecordDeletion(1001, 1002)

	deleted := &state.AccountDiff{}
	deleted.SetBalance(0)
	deleted.SetDeleted(true)
	cs := f.changeSet(t, change{1001, deleted}, balanceTo(1002, 11*u))
	require.NoError(t, f.interceptor.Preview(cs))

	const reward = 10 * 5
	assert.Equal(t, int64(0), *cs.Changes(0).Balance)
	assert.Equal(t, 11*u+reward, *cs.Changes(1).Balance)
	assert.Equal(t, []txn.Payment{{Account: 1002, Amount: reward}}, f.sideEffects.PaidRewards())
}

func TestPreview_RedirectCycle(t *testing.T) {
	f := newFixture(t, true)
	f.addNode(t, 0, 10*u)
	f.put(t, staker(1001, 10*u, entity.NodeID(0).StakedID(), 100))
	f.put(t, staker(1002, 0, 0, -1))
	f.txn.RecordDeletion(1001, 1002)
	f.txn.RecordDeletion(1002, 1001)

	deleted := func() *state.AccountDiff {
		d := &state.AccountDiff{}
		d.SetBalance(0)
		d.SetDeleted(true)
		return d
	}
	cs := f.changeSet(t, change{1001, deleted()}, change{1002, deleted()})
	err := f.interceptor.Preview(cs)
	assert.ErrorIs(t, err, ErrRedirectToDeleted)
}

func TestPreview_ActivatesRewards(t *testing.T) {
	f := newFixture(t, false)
	info := f.addNode(t, 0, 10*u)
	info.RewardSumHistory = []int64{7, 3, 1, 0}
	f.put(t, staker(1001, 20*u, 0, -1))
	f.put(t, staker(1003, 10*u, entity.NodeID(0).StakedID(), -1))
	funded := f.account(t, funding)
	funded.Balance = 990 * u

	cs := f.changeSet(t, balanceTo(1001, 10*u), balanceTo(funding, 1000*u))
	require.NoError(t, f.interceptor.Preview(cs))

	assert.True(t, f.network.AreRewardsActivated())
	assert.Equal(t, []int64{0, 0, 0, 0}, info.RewardSumHistory)
	assert.Equal(t, curPeriod, f.account(t, 1003).StakePeriodStart)
	assert.Equal(t, int64(-1), f.account(t, 1001).StakePeriodStart)
}

func TestPreview_BelowThresholdStaysInactive(t *testing.T) {
	f := newFixture(t, false)
	f.put(t, staker(1001, 20*u, 0, -1))
	funded := f.account(t, funding)
	funded.Balance = 980 * u

	cs := f.changeSet(t, balanceTo(1001, 10*u), balanceTo(funding, 990*u))
	require.NoError(t, f.interceptor.Preview(cs))
	assert.False(t, f.network.AreRewardsActivated())
}

func TestPreview_Disabled(t *testing.T) {
	f := newFixture(t, true)
	f.interceptor.cfg.Enabled = false
	f.addNode(t, 0, 10*u)
	f.put(t, staker(1001, 100*u, 0, -1))
	f.put(t, staker(1002, 10*u, entity.NodeID(0).StakedID(), 100))

	cs := f.changeSet(t, balanceTo(1001, 60*u), balanceTo(1002, 50*u))
	require.NoError(t, f.interceptor.Preview(cs))
	assert.Equal(t, 2, cs.Size())
	assert.Empty(t, f.sideEffects.PaidRewards())

	q := *cs.Entity(1)
	f.interceptor.Finish(1, &q)
	assert.Equal(t, *cs.Entity(1), q)

	f.sideEffects.Reset()
	cs = f.changeSet(t, balanceTo(1001, 70*u))
	assert.ErrorIs(t, f.interceptor.Preview(cs), ErrNonZeroNetChange)
}

func TestScratch_GrowsPastHint(t *testing.T) {
	f := newFixture(t, false)
	f.interceptor.prepareScratch(1)
	assert.Equal(t, 4, cap(f.interceptor.scratch))

	f.interceptor.at(9).rewardEarned = 1
	require.Len(t, f.interceptor.scratch, 10)
	assert.Equal(t, naScratch, f.interceptor.scratch[8])

	f.interceptor.prepareScratch(1)
	assert.Empty(t, f.interceptor.scratch)
}

func TestShouldRememberStakeStartFor(t *testing.T) {
	f := newFixture(t, true)
	node := entity.NodeID(0).StakedID()

	rewarded := staker(1, u, node, curPeriod-1)
	rewarded.StakeAtStartOfLastRewardedPeriod = u

	tests := []struct {
		name    string
		account *state.Account
		cur     int64
		reward  int64
		want    bool
	}{
		{"no account", nil, node, 10, false},
		{"not staked to node", staker(1, u, 0, 0), 0, 10, false},
		{"not in reward situation", staker(1, u, node, 50), node, state.NA, false},
		{"paid", staker(1, u, node, 50), node, 10, true},
		{"zero stake", staker(1, 0, node, 50), node, 0, true},
		{"already rewarded this period", rewarded, node, 0, false},
		{"started last period", staker(1, u, node, curPeriod-1), node, 0, true},
		{"started this period", staker(1, u, node, curPeriod), node, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.interceptor.shouldRememberStakeStartFor(tt.account, tt.cur, tt.reward))
		})
	}
}

func TestRewardableStartStakeFor(t *testing.T) {
	f := newFixture(t, true)
	f.interceptor.rewardsActivated = true
	node := entity.NodeID(0).StakedID()

	assert.Zero(t, f.interceptor.rewardableStartStakeFor(staker(1, 5*u, node, curPeriod)))
	assert.Equal(t, 5*u, f.interceptor.rewardableStartStakeFor(staker(1, 5*u+7, node, 10)))

	rewarded := staker(1, 5*u, node, curPeriod-1)
	rewarded.StakeAtStartOfLastRewardedPeriod = 3 * u
	assert.Equal(t, 3*u, f.interceptor.rewardableStartStakeFor(rewarded))

	declined := staker(1, 5*u, node, 10)
	declined.DeclineReward = true
	assert.Zero(t, f.interceptor.rewardableStartStakeFor(declined))
}
