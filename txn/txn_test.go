// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	c := NewContext()
	now := time.Unix(1_700_000_000, 0)
	c.Reset(now)
	assert.Equal(t, now, c.ConsensusTime())
	assert.Equal(t, 0, c.NumDeletedAccountsAndContracts())

	c.RecordDeletion(5, 6)
	c.RecordDeletion(6, 7)
	assert.Equal(t, 2, c.NumDeletedAccountsAndContracts())

	b, err := c.BeneficiaryOfDeleted(5)
	require.NoError(t, err)
	assert.EqualValues(t, 6, b)

	_, err = c.BeneficiaryOfDeleted(7)
	assert.Error(t, err)

	c.Reset(now.Add(time.Second))
	assert.Equal(t, 0, c.NumDeletedAccountsAndContracts())
}

func TestSideEffectsTracker(t *testing.T) {
	s := NewSideEffectsTracker()
	s.TrackHbarChange(2, -40)
	s.TrackHbarChange(1, 40)
	s.TrackHbarChange(3, 5)
	s.TrackHbarChange(3, -5)
	s.TrackRewardPayment(1, 7)

	assert.Equal(t, int64(0), s.NetHbarChange())
	assert.Equal(t, []Payment{{Account: 1, Amount: 40}, {Account: 2, Amount: -40}}, s.HbarChanges())
	assert.Equal(t, []Payment{{Account: 1, Amount: 7}}, s.PaidRewards())

	s.Reset()
	assert.Empty(t, s.PaidRewards())
	assert.Empty(t, s.HbarChanges())
	assert.Equal(t, int64(0), s.NetHbarChange())
}
