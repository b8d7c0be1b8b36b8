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

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrNotAssociated = errors.New("token not associated")
	ErrNftNotFound   = errors.New("nft not found")
)

func (l *Ledger) token(num entity.Num) (*state.Token, error) {
	token, err := l.stores.Tokens.GetForModify(num)
	if err != nil {
		return nil, err
	}
	if token == nil || token.Deleted {
		return nil, errors.Wrapf(ErrTokenNotFound, "token %v", num)
	}
	return token, nil
}

func (l *Ledger) tokenRel(account, token entity.Num) (*state.TokenRel, error) {
	rel, err := l.stores.TokenRels.GetForModify(entity.TokenRelKey{Account: account, Token: token})
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, errors.Wrapf(ErrNotAssociated, "token %v with account %v", token, account)
	}
	return rel, nil
}

func (l *Ledger) liveAccountForModify(num entity.Num) (*state.Account, error) {
	account, err := l.stores.Accounts.GetForModify(num)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Deleted {
		return nil, errors.Wrapf(ErrAccountNotFound, "account %v", num)
	}
	return account, nil
}

// CreateToken defines token and associates it with its treasury, which
// holds the whole initial supply.
func (l *Ledger) CreateToken(token state.Token) error {
	if l.pending == nil {
		return ErrNoTransaction
	}
	if token.Num == entity.Missing {
		return errors.New("token number zero is reserved")
	}
	if existing, err := l.stores.Tokens.Get(token.Num); err != nil {
		return err
	} else if existing != nil {
		return errors.Errorf("token %v already exists", token.Num)
	}
	if token.Type == state.NonFungibleUnique {
		token.TotalSupply = 0
	}
	token.LastSerial = 0
	token.Deleted = false
	if err := l.stores.Tokens.Put(token.Num, &token); err != nil {
		return err
	}
	if err := l.Associate(token.Treasury, token.Num); err != nil {
		return err
	}
	rel, err := l.tokenRel(token.Treasury, token.Num)
	if err != nil {
		return err
	}
	rel.Balance = token.TotalSupply
	rel.KycGranted = true
	return nil
}

// Associate links account with tokens, most recent first.
func (l *Ledger) Associate(account entity.Num, tokens ...entity.Num) error {
	if l.pending == nil {
		return ErrNoTransaction
	}
	owner, err := l.liveAccountForModify(account)
	if err != nil {
		return err
	}
	rels := make([]*state.TokenRel, 0, len(tokens))
	seen := make(map[entity.Num]bool, len(tokens))
	for _, num := range tokens {
		if _, err := l.token(num); err != nil {
			return err
		}
		has, err := l.stores.TokenRels.Has(entity.TokenRelKey{Account: account, Token: num})
		if err != nil {
			return err
		}
		if has || seen[num] {
			return errors.Errorf("token %v already associated with %v", num, account)
		}
		seen[num] = true
		rels = append(rels, &state.TokenRel{Account: account, Token: num})
	}
	if err := l.tokenRels.UpdateLinks(account, nil, rels); err != nil {
		return err
	}
	owner.NumAssociations += uint64(len(rels))
	return nil
}

// Dissociate unlinks tokens from account; its balance of each must be zero.
func (l *Ledger) Dissociate(account entity.Num, tokens ...entity.Num) error {
	if l.pending == nil {
		return ErrNoTransaction
	}
	owner, err := l.liveAccountForModify(account)
	if err != nil {
		return err
	}
	for _, num := range tokens {
		rel, err := l.tokenRel(account, num)
		if err != nil {
			return err
		}
		if rel.Balance != 0 {
			return errors.Errorf("account %v still holds %d of token %v", account, rel.Balance, num)
		}
	}
	if err := l.tokenRels.UpdateLinks(account, tokens, nil); err != nil {
		return err
	}
	owner.NumAssociations -= uint64(len(tokens))
	return nil
}

// MintNFT mints the next serial of token to owner. Minting to Missing or to
// the treasury leaves it with the treasury.
func (l *Ledger) MintNFT(tokenNum, owner entity.Num, metadata []byte) (entity.NftID, error) {
	if l.pending == nil {
		return entity.NftID{}, ErrNoTransaction
	}
	token, err := l.token(tokenNum)
	if err != nil {
		return entity.NftID{}, err
	}
	if token.Type != state.NonFungibleUnique {
		return entity.NftID{}, errors.Errorf("token %v is not non-fungible", tokenNum)
	}
	if owner == entity.Missing {
		owner = token.Treasury
	}
	ownerRel, err := l.tokenRel(owner, tokenNum)
	if err != nil {
		return entity.NftID{}, err
	}

	id := entity.NftID{Token: tokenNum, Serial: token.LastSerial + 1}
	nft := &state.UniqueToken{ID: id}
	if owner != token.Treasury {
		if nft, err = l.nfts.UpdateLinks(entity.Missing, owner, id); err != nil {
			return entity.NftID{}, err
		}
		holder, err := l.liveAccountForModify(owner)
		if err != nil {
			return entity.NftID{}, err
		}
		holder.NftsOwned++
	} else if err := l.stores.UniqueTokens.Put(id, nft); err != nil {
		return entity.NftID{}, err
	}
	nft.Owner = owner
	nft.Metadata = metadata
	nft.CreationTime = uint64(l.txn.ConsensusTime().Unix())

	token.LastSerial = id.Serial
	token.TotalSupply++
	ownerRel.Balance++
	return id, nil
}

// TransferNFT moves id from one owner to another; both must be associated with its token.
func (l *Ledger) TransferNFT(id entity.NftID, from, to entity.Num) error {
	if l.pending == nil {
		return ErrNoTransaction
	}
	token, err := l.token(id.Token)
	if err != nil {
		return err
	}
	nft, err := l.stores.UniqueTokens.Get(id)
	if err != nil {
		return err
	}
	if nft == nil {
		return errors.Wrapf(ErrNftNotFound, "nft %v", id)
	}
	if nft.Owner != from {
		return errors.Errorf("nft %v is owned by %v, not %v", id, nft.Owner, from)
	}
	if from == to {
		return nil
	}
	fromRel, err := l.tokenRel(from, id.Token)
	if err != nil {
		return err
	}
	toRel, err := l.tokenRel(to, id.Token)
	if err != nil {
		return err
	}
	if _, err := l.nfts.UpdateLinks(from, to, id); err != nil {
		return err
	}
	if err := l.countOwned(from, token, -1); err != nil {
		return err
	}
	if err := l.countOwned(to, token, 1); err != nil {
		return err
	}
	moved, err := l.stores.UniqueTokens.GetForModify(id)
	if err != nil {
		return err
	}
	moved.Owner = to
	moved.Spender = entity.Missing
	fromRel.Balance--
	toRel.Balance++
	return nil
}

// BurnNFT destroys id, unlinking it from its owner's list.
func (l *Ledger) BurnNFT(id entity.NftID) error {
	if l.pending == nil {
		return ErrNoTransaction
	}
	token, err := l.token(id.Token)
	if err != nil {
		return err
	}
	nft, err := l.stores.UniqueTokens.Get(id)
	if err != nil {
		return err
	}
	if nft == nil {
		return errors.Wrapf(ErrNftNotFound, "nft %v", id)
	}
	rel, err := l.tokenRel(nft.Owner, id.Token)
	if err != nil {
		return err
	}
	if _, err := l.nfts.UpdateLinks(nft.Owner, entity.Missing, id); err != nil {
		return err
	}
	if err := l.countOwned(nft.Owner, token, -1); err != nil {
		return err
	}
	if err := l.stores.UniqueTokens.Delete(id); err != nil {
		return err
	}
	token.TotalSupply--
	rel.Balance--
	return nil
}

func (l *Ledger) countOwned(num entity.Num, token *state.Token, delta int) error {
	if num == token.Treasury {
		return nil
	}
	account, err := l.liveAccountForModify(num)
	if err != nil {
		return err
	}
	if delta < 0 {
		account.NftsOwned--
	} else {
		account.NftsOwned++
	}
	return nil
}

// TokenRelsOf returns the associations of num, most recent first.
func (l *Ledger) TokenRelsOf(num entity.Num) ([]*state.TokenRel, error) {
	account, err := l.Account(num)
	if err != nil || account == nil {
		return nil, err
	}
	var rels []*state.TokenRel
	err = l.tokenRels.Walk(account, func(rel *state.TokenRel) error {
		rels = append(rels, rel)
		return nil
	})
	return rels, err
}

// NFTsOf returns the NFTs num owns outside of treasuries, most recently received first.
func (l *Ledger) NFTsOf(num entity.Num) ([]*state.UniqueToken, error) {
	account, err := l.Account(num)
	if err != nil || account == nil {
		return nil, err
	}
	var nfts []*state.UniqueToken
	err = l.nfts.Walk(account, func(nft *state.UniqueToken) error {
		nfts = append(nfts, nft)
		return nil
	})
	return nfts, err
}
