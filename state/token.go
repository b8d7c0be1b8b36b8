// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/stakeledger/ledger/entity"

type TokenType uint8

const (
	FungibleCommon TokenType = iota
	NonFungibleUnique
)

// Token is a token definition.
type Token struct {
	Num         entity.Num
	Type        TokenType
	Treasury    entity.Num
	Name        string
	Symbol      string
	TotalSupply uint64
	LastSerial  uint64
	Deleted     bool
}

// TokenRel is an account's association with a token. The associations of an
// account form a list through Next, headed by Account.HeadTokenNum.
type TokenRel struct {
	Account    entity.Num
	Token      entity.Num
	Balance    uint64
	Frozen     bool
	KycGranted bool
	Automatic  bool
	Next       entity.Num
}

func (r *TokenRel) Key() entity.TokenRelKey {
	return entity.TokenRelKey{Account: r.Account, Token: r.Token}
}

// UniqueToken is one NFT serial. The NFTs owned by an account form a doubly
// linked list through Prev and Next, headed by Account.HeadNft.
type UniqueToken struct {
	ID           entity.NftID
	Owner        entity.Num
	Spender      entity.Num
	Metadata     []byte
	CreationTime uint64
	Prev         entity.NftID
	Next         entity.NftID
}
