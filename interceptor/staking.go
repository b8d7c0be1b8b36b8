// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interceptor

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/metrics"
	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/txn"
)

// ErrRedirectToDeleted is returned when a reward owed to a deleted account
// cannot be redirected to a live beneficiary.
var ErrRedirectToDeleted = errors.New("reward redirected to a deleted beneficiary")

var (
	metricRewardsPaid      = metrics.LazyLoadCounter("staking_rewards_paid_total")
	metricRewardRedirects  = metrics.LazyLoadCounter("staking_reward_redirects_total")
	metricRewardActivation = metrics.LazyLoadCounter("staking_rewards_activated_total")
)

// RewardCalculator computes and credits stake rewards.
type RewardCalculator interface {
	Reset()
	ComputePendingReward(account *state.Account) (int64, error)
	ApplyReward(reward int64, account *state.Account, diff *state.AccountDiff) bool
	RewardsPaidInThisTxn() int64
}

// PeriodManager answers stake period questions for the current transaction.
type PeriodManager interface {
	CurrentStakePeriod() int64
	FirstNonRewardableStakePeriod() int64
	StartUpdateFor(curStakedID, newStakedID int64, rewarded, stakeMetaChanged bool) int64
}

// StakeInfoTracker keeps the per node reward bookkeeping.
type StakeInfoTracker interface {
	UnclaimRewardsForStakeStart(node entity.NodeID, amount int64) error
	ClearAllRewardHistory() error
}

// StakeChangeManager moves stake between nodes and enrolls stakees.
type StakeChangeManager interface {
	WithdrawStake(node entity.NodeID, amount int64, declinedReward bool) error
	AwardStake(node entity.NodeID, amount int64, declinedReward bool) error
	FindOrAdd(num entity.Num, cs *state.AccountChangeSet) (int, error)
	InitializeAllStakingStartsTo(period int64) error
}

// stakeScratch is what the interceptor works out for one change set index.
// NA means not applicable.
type stakeScratch struct {
	rewardEarned           int64
	stakeAtStartUpdate     int64
	stakedToMeUpdate       int64
	stakePeriodStartUpdate int64
	scenario               StakeChangeScenario
}

var naScratch = stakeScratch{
	rewardEarned:           state.NA,
	stakeAtStartUpdate:     state.NA,
	stakedToMeUpdate:       state.NA,
	stakePeriodStartUpdate: state.NA,
}

// StakingAccountsCommitInterceptor pays stake rewards, keeps stakedToMe and
// node stakes in step with the account changes of a transaction, and decides
// each account's new stake period start. With staking disabled it only
// checks value conservation.
type StakingAccountsCommitInterceptor struct {
	*AccountsCommitInterceptor

	cfg         config.Staking
	txn         *txn.Context
	sideEffects *txn.SideEffectsTracker
	network     func() *state.NetworkContext
	rewards     RewardCalculator
	periods     PeriodManager
	infos       StakeInfoTracker
	changes     StakeChangeManager

	rewardsActivated  bool
	newFundingBalance int64
	scratch           []stakeScratch
}

func NewStakingAccountsCommitInterceptor(
	cfg config.Staking,
	txnCtx *txn.Context,
	sideEffects *txn.SideEffectsTracker,
	network func() *state.NetworkContext,
	rewards RewardCalculator,
	periods PeriodManager,
	infos StakeInfoTracker,
	changes StakeChangeManager,
) *StakingAccountsCommitInterceptor {
	return &StakingAccountsCommitInterceptor{
		AccountsCommitInterceptor: NewAccountsCommitInterceptor(sideEffects),
		cfg:                       cfg,
		txn:                       txnCtx,
		sideEffects:               sideEffects,
		network:                   network,
		rewards:                   rewards,
		periods:                   periods,
		infos:                     infos,
		changes:                   changes,
	}
}

// Preview completes cs with rewards, stakedToMe updates and the funding
// account debit, then checks value conservation. An error aborts the transaction.
func (c *StakingAccountsCommitInterceptor) Preview(cs *state.AccountChangeSet) error {
	if !c.cfg.Enabled {
		return c.AccountsCommitInterceptor.Preview(cs)
	}
	c.rewards.Reset()
	c.prepareScratch(cs.Size())
	// once activated, rewards stay activated
	c.rewardsActivated = c.rewardsActivated || c.network().AreRewardsActivated()
	c.newFundingBalance = state.NA

	if err := c.updateRewardsAndElections(cs); err != nil {
		return err
	}
	if err := c.finalizeStakeMetadata(cs); err != nil {
		return err
	}
	if err := c.finalizeRewardBalance(cs); err != nil {
		return err
	}
	if err := c.AccountsCommitInterceptor.Preview(cs); err != nil {
		return err
	}
	if !c.rewardsActivated && c.newFundingBalance >= c.cfg.StartThreshold {
		return c.activateStakingRewards()
	}
	return nil
}

// Finish copies the staking fields worked out for index i onto account.
func (c *StakingAccountsCommitInterceptor) Finish(i int, account *state.Account) {
	if !c.cfg.Enabled || i >= len(c.scratch) {
		return
	}
	s := &c.scratch[i]
	if s.stakedToMeUpdate != state.NA {
		account.StakedToMe = s.stakedToMeUpdate
	}
	if s.stakePeriodStartUpdate != state.NA {
		account.StakePeriodStart = s.stakePeriodStartUpdate
	}
	if s.stakeAtStartUpdate != state.NA {
		account.StakeAtStartOfLastRewardedPeriod = s.stakeAtStartUpdate
	}
}

// prepareScratch resets the scratch of a change set of n entries. Each entry
// can pull in at most two stakees, plus the funding account once, so 3n+1
// is only a starting capacity; at grows past it if ever needed.
func (c *StakingAccountsCommitInterceptor) prepareScratch(n int) {
	if hint := 3*n + 1; cap(c.scratch) < hint {
		c.scratch = make([]stakeScratch, 0, hint)
	}
	c.scratch = c.scratch[:0]
}

// at returns the scratch of index i. The pointer is invalidated by the next
// call that grows the change set.
func (c *StakingAccountsCommitInterceptor) at(i int) *stakeScratch {
	for len(c.scratch) <= i {
		c.scratch = append(c.scratch, naScratch)
	}
	return &c.scratch[i]
}

func stakedIDs(account *state.Account, changes *state.AccountDiff) (cur, next int64) {
	if account != nil {
		cur = account.StakedID
	}
	return cur, changes.FinalStakedID(account)
}

// updateRewardsAndElections visits cs while it grows. Before index i every
// rewardable account in [0, i) has been rewarded, and every stakee affected
// by [0, i) is in cs with its stakedToMe update.
func (c *StakingAccountsCommitInterceptor) updateRewardsAndElections(cs *state.AccountChangeSet) error {
	origN := cs.Size()
	for i := 0; i < cs.Size(); i++ {
		account, changes := cs.Entity(i), cs.Changes(i)
		cur, next := stakedIDs(account, changes)
		scenario := ForCase(cur, next)
		c.at(i).scenario = scenario

		if err := c.payRewardIfPending(i, account, changes, cs); err != nil {
			return err
		}
		// stakees can change neither their staked id nor, unless rewarded
		// while staking to a node, their balance
		if i < origN {
			if err := c.updateStakedToMeSideEffects(account, scenario, cur, next, changes, cs); err != nil {
				return err
			}
		}
		if !c.rewardsActivated && cs.ID(i) == c.cfg.FundingAccount {
			c.newFundingBalance = changes.FinalBalance(account)
		}
	}
	return nil
}

func (c *StakingAccountsCommitInterceptor) updateStakedToMeSideEffects(
	account *state.Account,
	scenario StakeChangeScenario,
	cur, next int64,
	changes *state.AccountDiff,
	cs *state.AccountChangeSet,
) error {
	if scenario == FromAccountToAccount && cur == next {
		finalBalance := changes.FinalBalance(account)
		delta := state.RoundedToUnit(finalBalance) - state.RoundedToUnit(account.Balance)
		return c.alterStakedToMe(entity.Num(cur), delta, finalBalance != account.Balance, cs)
	}
	if scenario.WithdrawsFromAccount() {
		if err := c.alterStakedToMe(entity.Num(cur), -state.RoundedToUnit(account.Balance), true, cs); err != nil {
			return err
		}
	}
	if scenario.AwardsToAccount() {
		return c.alterStakedToMe(entity.Num(next), state.RoundedToUnit(changes.FinalBalance(account)), true, cs)
	}
	return nil
}

func (c *StakingAccountsCommitInterceptor) alterStakedToMe(num entity.Num, delta int64, alwaysUpdate bool, cs *state.AccountChangeSet) error {
	if delta == 0 && !alwaysUpdate {
		return nil
	}
	j, err := c.changes.FindOrAdd(num, cs)
	if err != nil {
		return err
	}
	stakee := cs.Entity(j)
	if s := c.at(j); s.stakedToMeUpdate != state.NA {
		s.stakedToMeUpdate += delta
	} else if stakee != nil {
		s.stakedToMeUpdate = stakee.StakedToMe + delta
	} else {
		s.stakedToMeUpdate = delta
	}
	return c.payRewardIfPending(j, stakee, cs.Changes(j), cs)
}

func (c *StakingAccountsCommitInterceptor) payRewardIfPending(i int, account *state.Account, changes *state.AccountDiff, cs *state.AccountChangeSet) error {
	s := c.at(i)
	if s.rewardEarned != state.NA || !c.isRewardSituation(account, s.stakedToMeUpdate, changes) {
		return nil
	}
	return c.payReward(i, account, changes, cs)
}

// isRewardSituation reports whether account must be paid its pending reward
// before this transaction changes its stake.
func (c *StakingAccountsCommitInterceptor) isRewardSituation(account *state.Account, stakedToMeUpdate int64, changes *state.AccountDiff) bool {
	return c.rewardsActivated &&
		account != nil &&
		account.StakedID < 0 &&
		(stakedToMeUpdate != state.NA || changes.HasBalance() || changes.HasStakeMetaChanges(account))
}

func (c *StakingAccountsCommitInterceptor) payReward(i int, account *state.Account, changes *state.AccountDiff, cs *state.AccountChangeSet) error {
	reward, err := c.rewards.ComputePendingReward(account)
	if err != nil {
		return err
	}
	c.at(i).rewardEarned = reward
	if reward <= 0 {
		return nil
	}
	c.network().DecreasePendingRewards(reward)

	receiver := cs.ID(i)
	if changes.IsDeleted() {
		maxRedirects := c.txn.NumDeletedAccountsAndContracts()
		for j := 1; changes.IsDeleted(); j++ {
			if j > maxRedirects {
				logger.Error("reward redirect led to a deleted beneficiary",
					"deleted", maxRedirects,
					"changes", changes,
					"beneficiary", receiver)
				return errors.Wrapf(ErrRedirectToDeleted, "beneficiary %v after %d redirects", receiver, maxRedirects)
			}
			if receiver, err = c.txn.BeneficiaryOfDeleted(receiver); err != nil {
				return err
			}
			ri, err := c.changes.FindOrAdd(receiver, cs)
			if err != nil {
				return err
			}
			account, changes = cs.Entity(ri), cs.Changes(ri)
			metricRewardRedirects().Add(1)
		}
	}
	if c.rewards.ApplyReward(reward, account, changes) {
		c.sideEffects.TrackRewardPayment(receiver, reward)
		metricRewardsPaid().Add(reward)
	}
	return nil
}

func (c *StakingAccountsCommitInterceptor) finalizeStakeMetadata(cs *state.AccountChangeSet) error {
	for i, n := 0, cs.Size(); i < n; i++ {
		account, changes := cs.Entity(i), cs.Changes(i)
		cur, next := stakedIDs(account, changes)
		scenario := c.at(i).scenario
		metaChanged := changes.HasStakeMetaChanges(account)

		if scenario.WithdrawsFromNode() {
			node := entity.NodeFromStakedID(cur)
			if err := c.changes.WithdrawStake(node, state.RoundedToUnit(account.TotalStake()), account.DeclineReward); err != nil {
				return err
			}
			if metaChanged {
				// stake leaving before its rewards for this period are claimed
				if err := c.infos.UnclaimRewardsForStakeStart(node, c.rewardableStartStakeFor(account)); err != nil {
					return err
				}
			}
		}
		if scenario.AwardsToNode() && !changes.FinalDeleted(account) {
			stake := changes.FinalBalance(account) + c.finalStakedToMe(i, account)
			if err := c.changes.AwardStake(entity.NodeFromStakedID(next), state.RoundedToUnit(stake), changes.FinalDeclineReward(account)); err != nil {
				return err
			}
		}

		s := c.at(i)
		if metaChanged {
			s.stakeAtStartUpdate = state.NotRewardedSinceLastMetaChange
		} else if c.shouldRememberStakeStartFor(account, cur, s.rewardEarned) {
			s.stakeAtStartUpdate = state.RoundedToUnit(account.TotalStake())
		}
		rewarded := s.rewardEarned > 0 || (s.rewardEarned == 0 && c.earnedZeroRewardsBecauseOfZeroStake(account))
		s.stakePeriodStartUpdate = c.periods.StartUpdateFor(cur, next, rewarded, metaChanged)
	}
	return nil
}

func (c *StakingAccountsCommitInterceptor) finalStakedToMe(i int, account *state.Account) int64 {
	if u := c.at(i).stakedToMeUpdate; u != state.NA {
		return u
	}
	if account == nil {
		return 0
	}
	return account.StakedToMe
}

// earnedZeroRewardsBecauseOfZeroStake tells, for an account just paid zero,
// whether it had rewardable periods but no whole units staked in them.
func (c *StakingAccountsCommitInterceptor) earnedZeroRewardsBecauseOfZeroStake(account *state.Account) bool {
	return account.StakePeriodStart < c.periods.FirstNonRewardableStakePeriod()
}

// shouldRememberStakeStartFor reports whether the account's stake at the start
// of the current period must be recorded before this transaction changes it.
func (c *StakingAccountsCommitInterceptor) shouldRememberStakeStartFor(account *state.Account, cur, reward int64) bool {
	if account == nil || cur >= 0 || account.DeclineReward {
		return false
	}
	switch {
	case reward == state.NA:
		return false
	case reward > 0:
		return true
	case c.earnedZeroRewardsBecauseOfZeroStake(account):
		return true
	case account.HasBeenRewardedSinceLastMetaChange():
		// already rewarded this period, keep what was remembered then
		return false
	default:
		return account.StakePeriodStart < c.periods.CurrentStakePeriod()
	}
}

// rewardableStartStakeFor is the stake account had at the start of the
// current period that its node would have rewarded.
func (c *StakingAccountsCommitInterceptor) rewardableStartStakeFor(account *state.Account) int64 {
	if !c.rewardsActivated || account.DeclineReward {
		return 0
	}
	start, current := account.StakePeriodStart, c.periods.CurrentStakePeriod()
	if start >= current {
		return 0
	}
	if account.HasBeenRewardedSinceLastMetaChange() && start == current-1 {
		return account.StakeAtStartOfLastRewardedPeriod
	}
	return state.RoundedToUnit(account.TotalStake())
}

func (c *StakingAccountsCommitInterceptor) finalizeRewardBalance(cs *state.AccountChangeSet) error {
	paid := c.rewards.RewardsPaidInThisTxn()
	if paid <= 0 {
		return nil
	}
	j, err := c.changes.FindOrAdd(c.cfg.FundingAccount, cs)
	if err != nil {
		return err
	}
	cs.Changes(j).AdjustBalance(cs.Entity(j), -paid)
	return nil
}

func (c *StakingAccountsCommitInterceptor) activateStakingRewards() error {
	c.network().SetStakingRewardsActivated(true)
	if err := c.infos.ClearAllRewardHistory(); err != nil {
		return err
	}
	period := c.periods.CurrentStakePeriod()
	if err := c.changes.InitializeAllStakingStartsTo(period); err != nil {
		return err
	}
	metricRewardActivation().Add(1)
	logger.Info("staking rewards activated, reward sum histories cleared", "period", period, "fundingBalance", c.newFundingBalance)
	return nil
}
