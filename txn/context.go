// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package txn holds the per transaction context of the commit pipeline.
package txn

import (
	"time"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/entity"
)

// Context describes the transaction being handled.
type Context struct {
	consensusTime time.Time
	beneficiaries map[entity.Num]entity.Num
}

func NewContext() *Context {
	return &Context{beneficiaries: make(map[entity.Num]entity.Num)}
}

// Reset starts a new transaction reaching consensus at consensusTime.
func (c *Context) Reset(consensusTime time.Time) {
	c.consensusTime = consensusTime
	clear(c.beneficiaries)
}

func (c *Context) ConsensusTime() time.Time {
	return c.consensusTime
}

// RecordDeletion notes that num was deleted in favor of beneficiary.
func (c *Context) RecordDeletion(num, beneficiary entity.Num) {
	c.beneficiaries[num] = beneficiary
}

func (c *Context) NumDeletedAccountsAndContracts() int {
	return len(c.beneficiaries)
}

// BeneficiaryOfDeleted returns the beneficiary recorded for the deleted num.
func (c *Context) BeneficiaryOfDeleted(num entity.Num) (entity.Num, error) {
	b, ok := c.beneficiaries[num]
	if !ok {
		return 0, errors.Errorf("no beneficiary recorded for deleted %v", num)
	}
	return b, nil
}
