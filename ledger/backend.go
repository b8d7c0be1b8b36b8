// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/config"
	"github.com/stakeledger/ledger/kv"
	"github.com/stakeledger/ledger/lvldb"
	"github.com/stakeledger/ledger/pebbledb"
)

// OpenStore opens the key value store cfg selects.
func OpenStore(cfg config.Storage) (kv.StoreCloser, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return lvldb.NewMem()
	case config.BackendLevelDB:
		return lvldb.New(cfg.Path, lvldb.Options{
			CacheSize:              128,
			OpenFilesCacheCapacity: 64,
		})
	case config.BackendPebble:
		return pebbledb.New(cfg.Path)
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
