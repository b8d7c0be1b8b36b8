// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"strings"

	"github.com/stakeledger/ledger/changeset"
	"github.com/stakeledger/ledger/entity"
)

// AccountDiff holds the pending changes to an account's user controlled
// properties. A nil field is unchanged.
type AccountDiff struct {
	Balance       *int64
	StakedID      *int64
	DeclineReward *bool
	Deleted       *bool
}

// AccountChangeSet is the change set of the accounts touched by a transaction.
type AccountChangeSet = changeset.ChangeSet[entity.Num, *Account, *AccountDiff]

// NewAccountChangeSet returns an empty account change set.
func NewAccountChangeSet() *AccountChangeSet {
	return changeset.New[entity.Num, *Account, *AccountDiff](8)
}

func (d *AccountDiff) SetBalance(v int64) { d.Balance = &v }
func (d *AccountDiff) SetStakedID(v int64) { d.StakedID = &v }
func (d *AccountDiff) SetDeclineReward(v bool) { d.DeclineReward = &v }
func (d *AccountDiff) SetDeleted(v bool) { d.Deleted = &v }
func (d *AccountDiff) IsDeleted() bool { return d.Deleted != nil && *d.Deleted }
func (d *AccountDiff) HasBalance() bool { return d.Balance != nil }
func (d *AccountDiff) HasStakedID() bool { return d.StakedID != nil }
func (d *AccountDiff) HasDeclineReward() bool { return d.DeclineReward != nil }

// FinalBalance is the balance after the diff applies to account, which may be nil.
func (d *AccountDiff) FinalBalance(account *Account) int64 {
	if d.Balance != nil {
		return *d.Balance
	}
	if account == nil {
		return 0
	}
	return account.Balance
}

// FinalStakedID is the staked id after the diff applies to account.
func (d *AccountDiff) FinalStakedID(account *Account) int64 {
	if d.StakedID != nil {
		return *d.StakedID
	}
	if account == nil {
		return 0
	}
	return account.StakedID
}

func (d *AccountDiff) FinalDeclineReward(account *Account) bool {
	if d.DeclineReward != nil {
		return *d.DeclineReward
	}
	return account != nil && account.DeclineReward
}

func (d *AccountDiff) FinalDeleted(account *Account) bool {
	if d.Deleted != nil {
		return *d.Deleted
	}
	return account != nil && account.Deleted
}

// HasStakeMetaChanges reports whether the diff changes the staked id or the
// decline flag of account.
func (d *AccountDiff) HasStakeMetaChanges(account *Account) bool {
	if d.DeclineReward != nil && (account == nil || account.DeclineReward != *d.DeclineReward) {
		return true
	}
	return d.StakedID != nil && (account == nil || account.StakedID != *d.StakedID)
}

// AdjustBalance adds delta to the pending balance of account.
func (d *AccountDiff) AdjustBalance(account *Account, delta int64) {
	d.SetBalance(d.FinalBalance(account) + delta)
}

// ApplyTo copies the pending changes onto account.
func (d *AccountDiff) ApplyTo(account *Account) {
	if d.Balance != nil {
		account.Balance = *d.Balance
	}
	if d.StakedID != nil {
		account.StakedID = *d.StakedID
	}
	if d.DeclineReward != nil {
		account.DeclineReward = *d.DeclineReward
	}
	if d.Deleted != nil {
		account.Deleted = *d.Deleted
	}
}

func (d *AccountDiff) String() string {
	var parts []string
	if d.Balance != nil {
		parts = append(parts, fmt.Sprintf("balance=%d", *d.Balance))
	}
	if d.StakedID != nil {
		parts = append(parts, fmt.Sprintf("stakedId=%d", *d.StakedID))
	}
	if d.DeclineReward != nil {
		parts = append(parts, fmt.Sprintf("declineReward=%v", *d.DeclineReward))
	}
	if d.Deleted != nil {
		parts = append(parts, fmt.Sprintf("deleted=%v", *d.Deleted))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
