package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a line's base amount
// for a ledger whose group has the given nature.
//
//	DEBIT to ASSET/EXPENSE -> Positive (+)
//	CREDIT to ASSET/EXPENSE -> Negative (-)
//	DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
//	CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func CalculateSignedAmount(line domain.JournalEntry, nature domain.Nature) (decimal.Decimal, error) {
	if !nature.Valid() {
		return decimal.Zero, fmt.Errorf("unknown nature '%s' for ledger account %d", nature, line.LedgerAccountID)
	}
	net := line.BaseDebit.Sub(line.BaseCredit)
	if nature.DebitNormal() {
		return net, nil
	}
	return net.Neg(), nil
}

// BalanceDeltas sums the signed effect of lines per ledger account.
// natures maps each ledger account id to the nature of its group.
func BalanceDeltas(lines []domain.JournalEntry, natures map[int64]domain.Nature) (map[int64]decimal.Decimal, error) {
	deltas := make(map[int64]decimal.Decimal, len(lines))
	for _, line := range lines {
		nature, ok := natures[line.LedgerAccountID]
		if !ok {
			return nil, fmt.Errorf("nature not found for ledger account %d", line.LedgerAccountID)
		}
		signed, err := CalculateSignedAmount(line, nature)
		if err != nil {
			return nil, err
		}
		deltas[line.LedgerAccountID] = deltas[line.LedgerAccountID].Add(signed)
	}
	return deltas, nil
}

// LedgerNatures resolves the nature of each ledger account from its group.
func LedgerNatures(ledgers map[int64]domain.LedgerAccount, tree *domain.GroupTree) (map[int64]domain.Nature, error) {
	out := make(map[int64]domain.Nature, len(ledgers))
	for id, l := range ledgers {
		g, ok := tree.Get(l.GroupID)
		if !ok {
			return nil, fmt.Errorf("group %d of ledger account %d not found", l.GroupID, id)
		}
		out[id] = g.Nature
	}
	return out, nil
}
