// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandInt64Between returns a value in [lo, hi).
func RandInt64Between(lo, hi int64) int64 {
	return lo + mathrand.Int64N(hi-lo) //#nosec G404
}

// RandUnits returns a whole number of units below n, in tiny units.
func RandUnits(n int) int64 {
	return int64(mathrand.N(n)) * 100_000_000 //#nosec G404
}
