// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package interceptor

// StakeChangeScenario classifies how a transaction moves an account's stake.
type StakeChangeScenario uint8

const (
	Noop StakeChangeScenario = iota
	FromAccountToAccount
	FromAccountToNode
	FromNodeToAccount
	FromNodeToNode
	FromAccountToNone
	FromNodeToNone
	FromNoneToAccount
	FromNoneToNode
)

var scenarioNames = [...]string{
	Noop:                 "NOOP",
	FromAccountToAccount: "FROM_ACCOUNT_TO_ACCOUNT",
	FromAccountToNode:    "FROM_ACCOUNT_TO_NODE",
	FromNodeToAccount:    "FROM_NODE_TO_ACCOUNT",
	FromNodeToNode:       "FROM_NODE_TO_NODE",
	FromAccountToNone:    "FROM_ACCOUNT_TO_NONE",
	FromNodeToNone:       "FROM_NODE_TO_NONE",
	FromNoneToAccount:    "FROM_NONE_TO_ACCOUNT",
	FromNoneToNode:       "FROM_NONE_TO_NODE",
}

func (s StakeChangeScenario) String() string {
	if int(s) < len(scenarioNames) {
		return scenarioNames[s]
	}
	return "UNKNOWN"
}

// ForCase classifies a change of staked id from cur to next.
func ForCase(cur, next int64) StakeChangeScenario {
	switch {
	case cur < 0:
		switch {
		case next < 0:
			return FromNodeToNode
		case next == 0:
			return FromNodeToNone
		default:
			return FromNodeToAccount
		}
	case cur == 0:
		switch {
		case next < 0:
			return FromNoneToNode
		case next == 0:
			return Noop
		default:
			return FromNoneToAccount
		}
	default:
		switch {
		case next < 0:
			return FromAccountToNode
		case next == 0:
			return FromAccountToNone
		default:
			return FromAccountToAccount
		}
	}
}

func (s StakeChangeScenario) WithdrawsFromNode() bool {
	return s == FromNodeToAccount || s == FromNodeToNode || s == FromNodeToNone
}

func (s StakeChangeScenario) AwardsToNode() bool {
	return s == FromAccountToNode || s == FromNodeToNode || s == FromNoneToNode
}

func (s StakeChangeScenario) WithdrawsFromAccount() bool {
	return s == FromAccountToAccount || s == FromAccountToNode || s == FromAccountToNone
}

func (s StakeChangeScenario) AwardsToAccount() bool {
	return s == FromAccountToAccount || s == FromNodeToAccount || s == FromNoneToAccount
}
