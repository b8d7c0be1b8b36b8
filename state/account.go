// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"
	"math"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeledger/ledger/entity"
)

const (
	// UnitsToTiny is the number of tiny units in one whole unit of value.
	UnitsToTiny = int64(100_000_000)

	// NA marks a field that does not apply to the current transaction.
	NA = int64(math.MinInt64)

	// NotRewardedSinceLastMetaChange is the StakeAtStartOfLastRewardedPeriod of
	// an account not rewarded since it last changed its staking metadata.
	NotRewardedSinceLastMetaChange = int64(-1)
)

// RoundedToUnit truncates v to whole units.
func RoundedToUnit(v int64) int64 {
	return (v / UnitsToTiny) * UnitsToTiny
}

// Account is the ledger's view of an account. Values are in tiny units.
type Account struct {
	Num                              entity.Num
	Balance                          int64
	StakedID                         int64 // >0 account, <0 node -id-1, 0 none
	DeclineReward                    bool
	Deleted                          bool
	StakedToMe                       int64
	StakePeriodStart                 int64
	StakeAtStartOfLastRewardedPeriod int64
	HeadTokenNum                     entity.Num
	HeadNft                          entity.NftID
	NumAssociations                  uint64
	NftsOwned                        uint64
}

// NewAccount returns an account with the staking fields at their unset values.
func NewAccount(num entity.Num) *Account {
	return &Account{
		Num:                              num,
		StakePeriodStart:                 -1,
		StakeAtStartOfLastRewardedPeriod: NotRewardedSinceLastMetaChange,
	}
}

// TotalStake is the account's own balance plus what is staked to it.
func (a *Account) TotalStake() int64 {
	return a.Balance + a.StakedToMe
}

// StakedNode returns the node the account stakes to, if any.
func (a *Account) StakedNode() (entity.NodeID, bool) {
	if a.StakedID >= 0 {
		return 0, false
	}
	return entity.NodeFromStakedID(a.StakedID), true
}

// StakedAccount returns the account the account stakes to, if any.
func (a *Account) StakedAccount() (entity.Num, bool) {
	if a.StakedID <= 0 {
		return 0, false
	}
	return entity.Num(a.StakedID), true
}

func (a *Account) HasBeenRewardedSinceLastMetaChange() bool {
	return a.StakeAtStartOfLastRewardedPeriod != NotRewardedSinceLastMetaChange
}

// signed values are stored in two's complement
type accountRLP struct {
	Num                              entity.Num
	Balance                          uint64
	StakedID                         uint64
	DeclineReward                    bool
	Deleted                          bool
	StakedToMe                       uint64
	StakePeriodStart                 uint64
	StakeAtStartOfLastRewardedPeriod uint64
	HeadTokenNum                     entity.Num
	HeadNft                          entity.NftID
	NumAssociations                  uint64
	NftsOwned                        uint64
}

func (a *Account) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &accountRLP{
		Num:                              a.Num,
		Balance:                          uint64(a.Balance),
		StakedID:                         uint64(a.StakedID),
		DeclineReward:                    a.DeclineReward,
		Deleted:                          a.Deleted,
		StakedToMe:                       uint64(a.StakedToMe),
		StakePeriodStart:                 uint64(a.StakePeriodStart),
		StakeAtStartOfLastRewardedPeriod: uint64(a.StakeAtStartOfLastRewardedPeriod),
		HeadTokenNum:                     a.HeadTokenNum,
		HeadNft:                          a.HeadNft,
		NumAssociations:                  a.NumAssociations,
		NftsOwned:                        a.NftsOwned,
	})
}

func (a *Account) DecodeRLP(s *rlp.Stream) error {
	var r accountRLP
	if err := s.Decode(&r); err != nil {
		return err
	}
	*a = Account{
		Num:                              r.Num,
		Balance:                          int64(r.Balance),
		StakedID:                         int64(r.StakedID),
		DeclineReward:                    r.DeclineReward,
		Deleted:                          r.Deleted,
		StakedToMe:                       int64(r.StakedToMe),
		StakePeriodStart:                 int64(r.StakePeriodStart),
		StakeAtStartOfLastRewardedPeriod: int64(r.StakeAtStartOfLastRewardedPeriod),
		HeadTokenNum:                     r.HeadTokenNum,
		HeadNft:                          r.HeadNft,
		NumAssociations:                  r.NumAssociations,
		NftsOwned:                        r.NftsOwned,
	}
	return nil
}
