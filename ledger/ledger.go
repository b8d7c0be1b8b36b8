// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger drives transactions through the commit pipeline: account
// changes are collected in a change set, completed by the staking
// interceptor, applied, and committed to storage together with the token and
// NFT list updates made along the way. A failed transaction leaves no trace.
package ledger

import (
	"time"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/interceptor"
	"github.com/stakeledger/ledger/kv"
	"github.com/stakeledger/ledger/log"
	"github.com/stakeledger/ledger/metrics"
	"github.com/stakeledger/ledger/staking"
	"github.com/stakeledger/ledger/state"
	"github.com/stakeledger/ledger/storage"
	"github.com/stakeledger/ledger/txn"
)

var (
	logger = log.WithContext("pkg", "ledger")

	ErrNoTransaction       = errors.New("no transaction in progress")
	ErrInTransaction       = errors.New("transaction already in progress")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountNotFound     = errors.New("account not found")

	metricTxns         = metrics.LazyLoadCounterVec("ledger_txns_total", []string{"result"})
	metricCommitMillis = metrics.LazyLoadHistogram("ledger_commit_duration_ms", []int64{1, 2, 5, 10, 20, 50, 100, 200, 500})
)

// Receipt reports the effects of a committed transaction.
type Receipt struct {
	ConsensusTime time.Time
	Rewards       []txn.Payment
	Changes       []txn.Payment
}

// Ledger is a single threaded ledger. Transactions run one at a time between
// Begin and Commit.
type Ledger struct {
	cfg    config.Config
	store  kv.Store
	stores *state.Stores

	txn         *txn.Context
	sideEffects *txn.SideEffectsTracker
	network     *state.NetworkContext

	periods     *staking.PeriodManager
	infos       *staking.StakeInfoManager
	stakes      *staking.StakeChangeManager
	rewards     *staking.RewardCalculator
	interceptor *interceptor.StakingAccountsCommitInterceptor
	tokenRels   *interceptor.TokenRelsLinkManager
	nfts        *interceptor.UniqueTokensLinkManager

	pending *state.AccountChangeSet
}

// New creates a ledger over store.
func New(store kv.Store, cfg config.Config) (*Ledger, error) {
	ctx, err := storage.NewContext(store, cfg.Storage.CacheSize)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		cfg:         cfg,
		store:       store,
		stores:      state.NewStores(ctx, cfg.Tokens.Nfts.UseVirtualStorage),
		txn:         txn.NewContext(),
		sideEffects: txn.NewSideEffectsTracker(),
	}
	staked := cfg.Staking
	l.periods = staking.NewPeriodManager(staked.PeriodMins, staked.RewardHistoryNumStoredPeriods, l.txn, l.currentNetwork)
	l.infos = staking.NewStakeInfoManager(l.stores.StakingInfos, staked.RewardHistoryNumStoredPeriods)
	l.stakes = staking.NewStakeChangeManager(l.infos, l.stores.Accounts)
	l.rewards = staking.NewRewardCalculator(l.periods, l.infos)
	l.interceptor = interceptor.NewStakingAccountsCommitInterceptor(
		staked,
		l.txn,
		l.sideEffects,
		l.currentNetwork,
		l.rewards,
		l.periods,
		l.infos,
		l.stakes,
	)
	l.tokenRels = interceptor.NewTokenRelsLinkManager(l.stores)
	l.nfts = interceptor.NewUniqueTokensLinkManager(l.stores)
	return l, nil
}

// currentNetwork is the network context of the running transaction, or a
// read only snapshot outside one.
func (l *Ledger) currentNetwork() *state.NetworkContext {
	if l.network != nil {
		return l.network
	}
	n, err := l.stores.Network.Get(state.NetworkKey{})
	if err != nil {
		logger.Error("failed to load network context", "err", err)
	}
	if n == nil {
		return &state.NetworkContext{}
	}
	return n
}

// Begin starts a transaction reaching consensus at consensusTime.
func (l *Ledger) Begin(consensusTime time.Time) error {
	if l.pending != nil {
		return ErrInTransaction
	}
	network, err := l.stores.NetworkForModify()
	if err != nil {
		return err
	}
	l.txn.Reset(consensusTime)
	l.sideEffects.Reset()
	l.network = network
	l.pending = state.NewAccountChangeSet()
	return nil
}

// Commit completes, applies and persists the running transaction. On error
// every change the transaction made is discarded.
func (l *Ledger) Commit() (*Receipt, error) {
	if l.pending == nil {
		return nil, ErrNoTransaction
	}
	start := time.Now()
	cs := l.pending
	receipt, err := l.commit(cs)
	if err != nil {
		l.Rollback()
		metricTxns().AddWithLabel(1, map[string]string{"result": "failed"})
		logger.Debug("transaction failed", "at", l.txn.ConsensusTime(), "err", err)
		return nil, err
	}
	l.end()
	metricTxns().AddWithLabel(1, map[string]string{"result": "committed"})
	metricCommitMillis().Observe(time.Since(start).Milliseconds())
	logger.Debug("transaction committed", "at", receipt.ConsensusTime, "accounts", cs.Size(), "rewards", len(receipt.Rewards))
	return receipt, nil
}

func (l *Ledger) commit(cs *state.AccountChangeSet) (*Receipt, error) {
	if err := l.interceptor.Preview(cs); err != nil {
		return nil, err
	}
	for i := 0; i < cs.Size(); i++ {
		num := cs.ID(i)
		account, err := l.stores.Accounts.GetForModify(num)
		if err != nil {
			return nil, err
		}
		if account == nil {
			account = state.NewAccount(num)
			if err := l.stores.Accounts.Put(num, account); err != nil {
				return nil, err
			}
		}
		cs.Changes(i).ApplyTo(account)
		l.interceptor.Finish(i, account)
	}
	receipt := &Receipt{
		ConsensusTime: l.txn.ConsensusTime(),
		Rewards:       append([]txn.Payment(nil), l.sideEffects.PaidRewards()...),
		Changes:       l.sideEffects.HbarChanges(),
	}
	if err := l.stores.Context.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit storage")
	}
	return receipt, nil
}

// Rollback discards the running transaction.
func (l *Ledger) Rollback() {
	l.stores.Context.Revert()
	l.end()
}

func (l *Ledger) end() {
	l.pending = nil
	l.network = nil
}

// Close closes the underlying store if it can be closed.
func (l *Ledger) Close() error {
	if l.pending != nil {
		l.Rollback()
	}
	if c, ok := l.store.(kv.StoreCloser); ok {
		return c.Close()
	}
	return nil
}

// Account returns the committed or pending state of num, nil if absent.
func (l *Ledger) Account(num entity.Num) (*state.Account, error) {
	return l.stores.Accounts.Get(num)
}

// Accounts returns every account in number order.
func (l *Ledger) Accounts() ([]*state.Account, error) {
	var out []*state.Account
	err := l.stores.Accounts.ForEach(func(a *state.Account) error {
		out = append(out, a)
		return nil
	})
	return out, err
}

// NodeStake returns the stake bookkeeping of node, nil if absent.
func (l *Ledger) NodeStake(node entity.NodeID) (*state.StakingInfo, error) {
	return l.infos.StakeInfoFor(node)
}

// Nodes returns the stake bookkeeping of every node.
func (l *Ledger) Nodes() ([]*state.StakingInfo, error) {
	var out []*state.StakingInfo
	err := l.stores.StakingInfos.ForEach(func(info *state.StakingInfo) error {
		out = append(out, info)
		return nil
	})
	return out, err
}

// Network returns a copy of the network context.
func (l *Ledger) Network() *state.NetworkContext {
	n := *l.currentNetwork()
	return &n
}

// CacheStats reports the storage read cache hits and misses.
func (l *Ledger) CacheStats() (hit, miss int64) {
	if s := l.stores.Context.CacheStats(); s != nil {
		return s.Counts()
	}
	return 0, 0
}
