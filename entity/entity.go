// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package entity defines the numeric identifiers used as storage keys.
package entity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Num is an account or token number. Zero means "none".
type Num uint64

// Missing is the "none" number.
const Missing Num = 0

// Bytes returns the 8 byte big endian form, so keys sort numerically.
func (n Num) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return b[:]
}

func (n Num) IsZero() bool { return n == Missing }

func (n Num) String() string {
	return "0.0." + strconv.FormatUint(uint64(n), 10)
}

// ParseNum parses "0.0.N" or a bare "N".
func ParseNum(s string) (Num, error) {
	s = strings.TrimPrefix(s, "0.0.")
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse entity number %q", s)
	}
	return Num(v), nil
}

// TokenRelKey identifies the association of an account with a token.
type TokenRelKey struct {
	Account Num
	Token   Num
}

func (k TokenRelKey) Bytes() []byte {
	b := make([]byte, 0, 16)
	b = append(b, k.Account.Bytes()...)
	return append(b, k.Token.Bytes()...)
}

func (k TokenRelKey) IsZero() bool { return k.Token.IsZero() }

func (k TokenRelKey) String() string {
	return fmt.Sprintf("%v-%v", k.Account, k.Token)
}

// NftID identifies one serial of a non-fungible token.
type NftID struct {
	Token  Num
	Serial uint64
}

func (id NftID) Bytes() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], uint64(id.Token))
	binary.BigEndian.PutUint64(b[8:], id.Serial)
	return b
}

// IsZero reports the "none" id. A zero token number alone marks it.
func (id NftID) IsZero() bool { return id.Token.IsZero() }

func (id NftID) String() string {
	return fmt.Sprintf("%v.%d", id.Token, id.Serial)
}

// NodeID identifies a consensus node that accounts stake to.
type NodeID uint64

func (n NodeID) Bytes() []byte {
	return Num(n).Bytes()
}

// StakedID encodes the node as a staked id, -id-1.
func (n NodeID) StakedID() int64 {
	return -int64(n) - 1
}

// NodeFromStakedID decodes a negative staked id.
func NodeFromStakedID(stakedID int64) NodeID {
	return NodeID(-stakedID - 1)
}
