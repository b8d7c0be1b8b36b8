// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"

	"github.com/stakeledger/ledger/entity"
)

// RandNum returns a random account or token number above the system range.
func RandNum() entity.Num {
	return entity.Num(1001 + mathrand.N(1_000_000)) //#nosec G404
}

// RandNftID returns a random nft id of token.
func RandNftID(token entity.Num) entity.NftID {
	return entity.NftID{Token: token, Serial: uint64(1 + mathrand.N(10_000))} //#nosec G404
}
