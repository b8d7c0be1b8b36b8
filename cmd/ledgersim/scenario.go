// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakeledger/ledger/entity"
	"github.com/stakeledger/ledger/ledger"
	"github.com/stakeledger/ledger/state"
)

// Scenario is a genesis followed by steps run in order. A step either ends
// the stake period before its time or runs its ops as one transaction.
type Scenario struct {
	Genesis ledger.Genesis `yaml:"genesis"`
	Steps   []Step         `yaml:"steps"`
}

type Step struct {
	At        time.Time `yaml:"at"`
	EndPeriod bool      `yaml:"endPeriod"`
	Ops       []Op      `yaml:"ops"`
}

// Op is one ledger operation. Which fields apply depends on Op.
type Op struct {
	Op          string       `yaml:"op"`
	Account     entity.Num   `yaml:"account"`
	From        entity.Num   `yaml:"from"`
	To          entity.Num   `yaml:"to"`
	Beneficiary entity.Num   `yaml:"beneficiary"`
	Amount      int64        `yaml:"amount"`
	StakedID    int64        `yaml:"stakedId"`
	Decline     bool         `yaml:"decline"`
	Token       entity.Num   `yaml:"token"`
	Tokens      []entity.Num `yaml:"tokens"`
	Serial      uint64       `yaml:"serial"`
	Metadata    string       `yaml:"metadata"`
	Name        string       `yaml:"name"`
	Unique      bool         `yaml:"unique"`
	Supply      uint64       `yaml:"supply"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if s.Genesis.Time.IsZero() {
		return nil, errors.New("scenario genesis needs a time")
	}
	last := s.Genesis.Time
	for i, step := range s.Steps {
		if step.At.Before(last) {
			return nil, errors.Errorf("step %d goes back in time", i)
		}
		if step.EndPeriod == (len(step.Ops) > 0) {
			return nil, errors.Errorf("step %d must either end a period or run ops", i)
		}
		last = step.At
	}
	return &s, nil
}

func (op *Op) apply(l *ledger.Ledger) error {
	switch op.Op {
	case "create":
		return l.Create(op.Account)
	case "transfer":
		return l.Transfer(op.From, op.To, op.Amount)
	case "adjust":
		return l.AdjustBalance(op.Account, op.Amount)
	case "stake":
		return l.SetStakedID(op.Account, op.StakedID)
	case "declineReward":
		return l.SetDeclineReward(op.Account, op.Decline)
	case "delete":
		return l.Delete(op.Account, op.Beneficiary)
	case "createToken":
		token := state.Token{Num: op.Token, Treasury: op.Account, Name: op.Name, TotalSupply: op.Supply}
		if op.Unique {
			token.Type = state.NonFungibleUnique
		}
		return l.CreateToken(token)
	case "associate":
		return l.Associate(op.Account, op.Tokens...)
	case "dissociate":
		return l.Dissociate(op.Account, op.Tokens...)
	case "mint":
		_, err := l.MintNFT(op.Token, op.To, []byte(op.Metadata))
		return err
	case "transferNft":
		return l.TransferNFT(entity.NftID{Token: op.Token, Serial: op.Serial}, op.From, op.To)
	case "burn":
		return l.BurnNFT(entity.NftID{Token: op.Token, Serial: op.Serial})
	default:
		return errors.Errorf("unknown op %q", op.Op)
	}
}

// runScenario seeds l and runs every step. A failing transaction is
// recorded in the report and the run goes on.
func runScenario(l *ledger.Ledger, s *Scenario) (*Report, error) {
	if err := l.Seed(&s.Genesis); err != nil {
		return nil, errors.Wrap(err, "seed")
	}
	var steps []StepReport
	for i := range s.Steps {
		step := &s.Steps[i]
		steps = append(steps, runStep(l, i, step))
	}
	last := s.Genesis.Time
	if n := len(s.Steps); n > 0 {
		last = s.Steps[n-1].At
	}
	l.SetClock(func() time.Time { return last })
	return buildReport(l, steps)
}

func runStep(l *ledger.Ledger, i int, step *Step) StepReport {
	out := StepReport{Index: i, At: step.At}
	if step.EndPeriod {
		out.Kind = "endPeriod"
		summary, err := l.EndStakingPeriod(step.At)
		if err != nil {
			out.Error = err.Error()
			return out
		}
		out.Rate = summary.Rate
		out.NewPendingRewards = summary.PendingRewards
		return out
	}

	out.Kind = "txn"
	if err := l.Begin(step.At); err != nil {
		out.Error = err.Error()
		return out
	}
	for j := range step.Ops {
		if err := step.Ops[j].apply(l); err != nil {
			l.Rollback()
			out.Error = errors.Wrapf(err, "op %d (%s)", j, step.Ops[j].Op).Error()
			return out
		}
	}
	receipt, err := l.Commit()
	if err != nil {
		out.Error = err.Error()
		return out
	}
	for _, p := range receipt.Rewards {
		out.Rewards = append(out.Rewards, Payment{Account: p.Account, Amount: p.Amount})
	}
	return out
}
