// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state defines the ledger records and the mappings storing them.
package state

import (
	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/storage"
)

type (
	Accounts     = storage.Mapping[entity.Num, Account]
	Tokens       = storage.Mapping[entity.Num, Token]
	TokenRels    = storage.Mapping[entity.TokenRelKey, TokenRel]
	UniqueTokens = storage.Mapping[entity.NftID, UniqueToken]
	StakingInfos = storage.Mapping[entity.NodeID, StakingInfo]
	Networks     = storage.Mapping[NetworkKey, NetworkContext]
)

// Stores are the mappings of one ledger, sharing one storage context.
type Stores struct {
	Context      *storage.Context
	Accounts     *Accounts
	Tokens       *Tokens
	TokenRels    *TokenRels
	UniqueTokens *UniqueTokens
	StakingInfos *StakingInfos
	Network      *Networks

	virtualNfts bool
}

// NewStores creates the mappings in ctx. NFTs go to the "virtual" mapping
// when virtualNfts is set, the "plain" one otherwise.
func NewStores(ctx *storage.Context, virtualNfts bool) *Stores {
	nftMapping := "nfts"
	if virtualNfts {
		nftMapping = "vnfts"
	}
	return &Stores{
		Context:      ctx,
		Accounts:     storage.NewMapping[entity.Num, Account](ctx, "accounts"),
		Tokens:       storage.NewMapping[entity.Num, Token](ctx, "tokens"),
		TokenRels:    storage.NewMapping[entity.TokenRelKey, TokenRel](ctx, "tokenrels"),
		UniqueTokens: storage.NewMapping[entity.NftID, UniqueToken](ctx, nftMapping),
		StakingInfos: storage.NewMapping[entity.NodeID, StakingInfo](ctx, "stakinginfos"),
		Network:      storage.NewMapping[NetworkKey, NetworkContext](ctx, "network"),
		virtualNfts:  virtualNfts,
	}
}

// VirtualNfts reports which NFT storage variant is in use.
func (s *Stores) VirtualNfts() bool {
	return s.virtualNfts
}

// NetworkForModify returns the tracked network context, creating it on first use.
func (s *Stores) NetworkForModify() (*NetworkContext, error) {
	n, err := s.Network.GetForModify(NetworkKey{})
	if err != nil {
		return nil, err
	}
	if n == nil {
		n = &NetworkContext{}
		if err := s.Network.Put(NetworkKey{}, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}
