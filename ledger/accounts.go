// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/state"
)

// change returns the pending account and diff of num in the running
// transaction, enrolling num if needed. The account is nil for one created
// in this transaction.
func (l *Ledger) change(num entity.Num, create bool) (*state.Account, *state.AccountDiff, error) {
	if l.pending == nil {
		return nil, nil, ErrNoTransaction
	}
	if _, ok := l.pending.Index(num); !ok && !create {
		exists, err := l.stores.Accounts.Has(num)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			return nil, nil, errors.Wrapf(ErrAccountNotFound, "account %v", num)
		}
	}
	i, err := l.stakes.FindOrAdd(num, l.pending)
	if err != nil {
		return nil, nil, err
	}
	return l.pending.Entity(i), l.pending.Changes(i), nil
}

// live is change for an account that must exist and not be deleted.
func (l *Ledger) live(num entity.Num) (*state.Account, *state.AccountDiff, error) {
	account, diff, err := l.change(num, false)
	if err != nil {
		return nil, nil, err
	}
	if account == nil && diff.Deleted == nil {
		return nil, nil, errors.Wrapf(ErrAccountNotFound, "account %v", num)
	}
	if diff.FinalDeleted(account) {
		return nil, nil, errors.Wrapf(ErrAccountNotFound, "account %v deleted", num)
	}
	return account, diff, nil
}

// Create opens account num with a zero balance.
func (l *Ledger) Create(num entity.Num) error {
	if num == entity.Missing {
		return errors.New("account number zero is reserved")
	}
	account, diff, err := l.change(num, true)
	if err != nil {
		return err
	}
	if account != nil || diff.Deleted != nil {
		return errors.Errorf("account %v already exists", num)
	}
	diff.SetDeleted(false)
	diff.SetBalance(0)
	return nil
}

// AdjustBalance adds delta to the balance of num. The transaction only
// commits if all adjustments sum to zero.
func (l *Ledger) AdjustBalance(num entity.Num, delta int64) error {
	account, diff, err := l.live(num)
	if err != nil {
		return err
	}
	if diff.FinalBalance(account)+delta < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "account %v", num)
	}
	diff.AdjustBalance(account, delta)
	return nil
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to entity.Num, amount int64) error {
	if amount < 0 {
		return errors.New("negative transfer amount")
	}
	if _, _, err := l.live(to); err != nil {
		return err
	}
	if err := l.AdjustBalance(from, -amount); err != nil {
		return err
	}
	return l.AdjustBalance(to, amount)
}

// SetStakedID stakes num to an account (id > 0), to node -id-1 (id < 0), or
// to nothing (id == 0).
func (l *Ledger) SetStakedID(num entity.Num, id int64) error {
	switch {
	case id > 0:
		if entity.Num(id) == num {
			return errors.Errorf("account %v cannot stake to itself", num)
		}
		target, err := l.stores.Accounts.Get(entity.Num(id))
		if err != nil {
			return err
		}
		if target == nil || target.Deleted {
			return errors.Wrapf(ErrAccountNotFound, "staked account %v", id)
		}
	case id < 0:
		node := entity.NodeFromStakedID(id)
		info, err := l.infos.StakeInfoFor(node)
		if err != nil {
			return err
		}
		if info == nil {
			return errors.Errorf("unknown node %d", node)
		}
	}
	_, diff, err := l.live(num)
	if err != nil {
		return err
	}
	diff.SetStakedID(id)
	return nil
}

func (l *Ledger) SetDeclineReward(num entity.Num, decline bool) error {
	_, diff, err := l.live(num)
	if err != nil {
		return err
	}
	diff.SetDeclineReward(decline)
	return nil
}

// Delete removes num, moving its balance to beneficiary, who also receives
// any stake reward num is owed.
func (l *Ledger) Delete(num, beneficiary entity.Num) error {
	if num == beneficiary {
		return errors.New("beneficiary must differ from the deleted account")
	}
	account, diff, err := l.live(num)
	if err != nil {
		return err
	}
	if stored, err := l.stores.Accounts.Get(num); err != nil {
		return err
	} else if stored != nil && (stored.NumAssociations > 0 || stored.NftsOwned > 0) {
		return errors.Errorf("account %v still has token associations", num)
	}
	balance := diff.FinalBalance(account)
	if err := l.Transfer(num, beneficiary, balance); err != nil {
		return err
	}
	diff.SetDeleted(true)
	l.txn.RecordDeletion(num, beneficiary)
	return nil
}
