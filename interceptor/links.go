// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interceptor

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/linkedlist"
	"github.com/stakeledger/ledger/metrics"
	"github.com/stakeledger/ledger/state"
)

var metricListMutations = metrics.LazyLoadCounterVec("owner_list_mutations_total", []string{"list", "op"})

func countListMutation(list, op string) {
	metricListMutations().AddWithLabel(1, map[string]string{"list": list, "op": op})
}

// tokenRelsMutation links the token associations of one account, keyed by token.
type tokenRelsMutation struct {
	account entity.Num
	rels    *state.TokenRels
}

func (m tokenRelsMutation) key(token entity.Num) entity.TokenRelKey {
	return entity.TokenRelKey{Account: m.account, Token: token}
}

func (m tokenRelsMutation) Get(token entity.Num) (*state.TokenRel, error) {
	return m.rels.Get(m.key(token))
}

func (m tokenRelsMutation) GetForModify(token entity.Num) (*state.TokenRel, error) {
	return m.rels.GetForModify(m.key(token))
}

func (m tokenRelsMutation) Put(token entity.Num, rel *state.TokenRel) error {
	return m.rels.Put(m.key(token), rel)
}

func (m tokenRelsMutation) Delete(token entity.Num) error {
	return m.rels.Delete(m.key(token))
}

func (tokenRelsMutation) Next(rel *state.TokenRel) entity.Num          { return rel.Next }
func (tokenRelsMutation) SetNext(rel *state.TokenRel, next entity.Num) { rel.Next = next }
func (tokenRelsMutation) MarkAsTail(rel *state.TokenRel)               { rel.Next = entity.Missing }

// uniqueTokensMutation links NFTs by id.
type uniqueTokensMutation struct {
	nfts *state.UniqueTokens
}

func (m uniqueTokensMutation) Get(id entity.NftID) (*state.UniqueToken, error) {
	return m.nfts.Get(id)
}

func (m uniqueTokensMutation) GetForModify(id entity.NftID) (*state.UniqueToken, error) {
	return m.nfts.GetForModify(id)
}

func (m uniqueTokensMutation) Put(id entity.NftID, nft *state.UniqueToken) error {
	return m.nfts.Put(id, nft)
}

func (m uniqueTokensMutation) Delete(id entity.NftID) error {
	return m.nfts.Delete(id)
}

func (uniqueTokensMutation) Next(nft *state.UniqueToken) entity.NftID          { return nft.Next }
func (uniqueTokensMutation) SetNext(nft *state.UniqueToken, next entity.NftID) { nft.Next = next }
func (uniqueTokensMutation) MarkAsTail(nft *state.UniqueToken)                 { nft.Next = entity.NftID{} }
func (uniqueTokensMutation) Prev(nft *state.UniqueToken) entity.NftID          { return nft.Prev }
func (uniqueTokensMutation) SetPrev(nft *state.UniqueToken, prev entity.NftID) { nft.Prev = prev }
func (uniqueTokensMutation) MarkAsHead(nft *state.UniqueToken)                 { nft.Prev = entity.NftID{} }

func accountForModify(accounts *state.Accounts, num entity.Num) (*state.Account, error) {
	account, err := accounts.GetForModify(num)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.Errorf("account %v not found", num)
	}
	return account, nil
}

// TokenRelsLinkManager keeps each account's token associations linked from
// Account.HeadTokenNum, most recent association first.
type TokenRelsLinkManager struct {
	stores *state.Stores
}

func NewTokenRelsLinkManager(stores *state.Stores) *TokenRelsLinkManager {
	return &TokenRelsLinkManager{stores: stores}
}

// UpdateLinks unlinks and deletes the dissociated tokens' relationships of
// account, then stores newRels at the head of its list. Each new relationship
// must carry its token number.
func (m *TokenRelsLinkManager) UpdateLinks(account entity.Num, dissociated []entity.Num, newRels []*state.TokenRel) error {
	owner, err := accountForModify(m.stores.Accounts, account)
	if err != nil {
		return err
	}
	mutation := tokenRelsMutation{account: account, rels: m.stores.TokenRels}

	head := owner.HeadTokenNum
	if head != entity.Missing {
		for _, token := range dissociated {
			if head, err = linkedlist.RemoveFromAnywhere[entity.Num, *state.TokenRel](mutation, token, head); err != nil {
				return errors.Wrapf(err, "dissociate %v from %v", token, account)
			}
			countListMutation("tokenrels", "remove")
		}
	}

	var headRel *state.TokenRel
	for _, rel := range newRels {
		rel.Account = account
		if head, err = linkedlist.InsertAtHead[entity.Num, *state.TokenRel](mutation, rel.Token, rel, head, headRel); err != nil {
			return errors.Wrapf(err, "associate %v with %v", rel.Token, account)
		}
		headRel = rel
		countListMutation("tokenrels", "insert")
	}
	owner.HeadTokenNum = head
	return nil
}

// Walk calls fn with the relationships of account from head to tail.
func (m *TokenRelsLinkManager) Walk(account *state.Account, fn func(*state.TokenRel) error) error {
	mutation := tokenRelsMutation{account: account.Num, rels: m.stores.TokenRels}
	return linkedlist.Walk[entity.Num, *state.TokenRel](mutation, account.HeadTokenNum, func(_ entity.Num, rel *state.TokenRel) error {
		return fn(rel)
	})
}

// UniqueTokensLinkManager keeps the NFTs each account owns linked from
// Account.HeadNft. Treasury holdings are not linked.
type UniqueTokensLinkManager struct {
	stores *state.Stores
}

func NewUniqueTokensLinkManager(stores *state.Stores) *UniqueTokensLinkManager {
	return &UniqueTokensLinkManager{stores: stores}
}

func isValidAndNotTreasury(num entity.Num, token *state.Token) bool {
	return num != entity.Missing && num != token.Treasury
}

// UpdateLinks moves id from the list of from to the head of the list of to;
// entity.Missing stands for no owner. If id does not exist yet it is created
// and returned, for the caller to fill in.
func (m *UniqueTokensLinkManager) UpdateLinks(from, to entity.Num, id entity.NftID) (*state.UniqueToken, error) {
	token, err := m.stores.Tokens.Get(id.Token)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, errors.Errorf("token %v not found", id.Token)
	}
	mutation := uniqueTokensMutation{nfts: m.stores.UniqueTokens}

	broken := false
	if isValidAndNotTreasury(from, token) {
		owner, err := accountForModify(m.stores.Accounts, from)
		if err != nil {
			return nil, err
		}
		if owner.HeadNft.IsZero() {
			logger.Error("invariant failure: account owns an NFT but has no head link", "account", from, "nft", id)
		} else if owner.HeadNft, broken, err = m.unlink(mutation, id, owner.HeadNft); err != nil {
			return nil, err
		}
	}

	var inserted *state.UniqueToken
	if broken {
		// still spliced into another chain, leave the receiver's list alone
		logger.Error("invariant failure: NFT not relinked", "nft", id, "to", to)
	} else if isValidAndNotTreasury(to, token) {
		owner, err := accountForModify(m.stores.Accounts, to)
		if err != nil {
			return nil, err
		}
		nft, err := mutation.GetForModify(id)
		if err != nil {
			return nil, err
		}
		if nft != nil {
			err = linkedlist.LinkAtHead[entity.NftID, *state.UniqueToken](mutation, id, nft, owner.HeadNft, nil)
			countListMutation("nfts", "link")
		} else {
			// minted straight to a non-treasury owner
			inserted = &state.UniqueToken{ID: id}
			_, err = linkedlist.InsertAtHead[entity.NftID, *state.UniqueToken](mutation, id, inserted, owner.HeadNft, nil)
			countListMutation("nfts", "insert")
		}
		if err != nil {
			return nil, err
		}
		owner.HeadNft = id
	}
	return inserted, nil
}

// unlink splices id out of the list headed by head. A list inconsistent with
// the recorded ownership is logged and left as is, and reported as broken.
func (m *UniqueTokensLinkManager) unlink(mutation uniqueTokensMutation, id, head entity.NftID) (entity.NftID, bool, error) {
	nft, err := mutation.GetForModify(id)
	if err != nil {
		return head, false, err
	}
	if nft == nil {
		logger.Error("invariant failure: owned NFT not found", "nft", id, "head", head)
		return head, false, nil
	}
	newHead, err := linkedlist.UnlinkFromAnywhere[entity.NftID, *state.UniqueToken](mutation, id, nft, head)
	if errors.Is(err, linkedlist.ErrBrokenList) {
		return head, true, nil
	}
	if err != nil {
		return head, false, err
	}
	countListMutation("nfts", "unlink")
	return newHead, false, nil
}

// Walk calls fn with the NFTs account owns from head to tail.
func (m *UniqueTokensLinkManager) Walk(account *state.Account, fn func(*state.UniqueToken) error) error {
	mutation := uniqueTokensMutation{nfts: m.stores.UniqueTokens}
	return linkedlist.Walk[entity.NftID, *state.UniqueToken](mutation, account.HeadNft, func(_ entity.NftID, nft *state.UniqueToken) error {
		return fn(nft)
	})
}
