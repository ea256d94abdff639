package analysis

import "fmt"

// StatementLine is one movement on the statement's account: the transaction
// that caused it, its signed effect on the balance, and the running balance
// after it.
type StatementLine struct {
	Date    Date
	Tx      Transaction
	Amount  Money
	Balance Money
}

// Statement is an account's activity over a window, built by replaying the
// ledger into a private registry. A save-point taken at the window start
// lets the window be replayed again after the ledger is edited, without
// redoing the history before it.
type Statement struct {
	Account string
	Window  Range
	Opening Money
	Closing Money
	Lines   []StatementLine

	accounts *AccountSet
	ledger   *Ledger
	cfg      Config
	d        *dispatcher
	reg      *Registry
	sp       *RegistrySavePoint
	// chargeableLen marks how many chargeable events predate the window.
	chargeableLen int
	// savedLedgers holds the ids of the capital ledgers alive at the
	// save-point. Ledgers first created inside the window live only in the
	// dispatcher, so a restore must drop them or a replay would append to
	// them twice.
	savedLedgers map[string]bool
}

// NewStatement replays history up to the window, snapshots, then replays
// the window itself.
func NewStatement(accounts *AccountSet, ledger *Ledger, prices PriceSource, cfg Config, accountID string, window Range) (*Statement, error) {
	if accounts.Get(accountID) == nil {
		return nil, fmt.Errorf("statement: unknown account %q", accountID)
	}
	if cfg.Currency == "" {
		cfg = DefaultConfig("GBP")
	}
	s := &Statement{
		Account:  accountID,
		Window:   window,
		accounts: accounts,
		ledger:   ledger,
		cfg:      cfg,
		d:        newDispatcher(accounts, zeroIfNil(prices), cfg),
	}
	s.reg = NewRegistry(TaxYearOf(window.From), nil)
	s.d.reg = s.reg

	before := Range{To: window.From.Add(-1)}
	if first, _, ok := ledger.Bounds(); ok {
		before.From = first
	}
	for tx := range ledger.Within(before) {
		if err := s.d.process(tx); err != nil {
			return nil, err
		}
	}
	s.Opening = s.balance()
	s.sp = SaveRegistry(s.reg)
	s.chargeableLen = len(s.d.chargeable)
	s.savedLedgers = make(map[string]bool, len(s.d.ledgers))
	for id := range s.d.ledgers {
		s.savedLedgers[id] = true
	}
	if err := s.replay(); err != nil {
		return nil, err
	}
	return s, nil
}

// Recompute rolls the registry back to the window start and replays the
// window against the current ledger contents. Call it after editing
// transactions inside the window.
func (s *Statement) Recompute() error {
	s.sp.Restore()
	for id := range s.d.ledgers {
		if !s.savedLedgers[id] {
			delete(s.d.ledgers, id)
		}
	}
	s.d.chargeable = s.d.chargeable[:s.chargeableLen]
	return s.replay()
}

func (s *Statement) replay() error {
	s.Lines = nil
	for tx := range s.ledger.Within(s.Window) {
		before := s.balance()
		if err := s.d.process(tx); err != nil {
			return err
		}
		if tx.Debit != s.Account && tx.Credit != s.Account {
			continue
		}
		after := s.balance()
		s.Lines = append(s.Lines, StatementLine{
			Date:    tx.Date,
			Tx:      tx,
			Amount:  after.Sub(before),
			Balance: after,
		})
	}
	s.Closing = s.balance()
	return nil
}

// balance reads the account's current principal metric out of the private
// registry.
func (s *Statement) balance() Money {
	a := s.accounts.Get(s.Account)
	var kind BucketKind
	switch {
	case a.IsPriced():
		kind = AssetAccountBucket
	case a.Kind == KindMoney:
		kind = MoneyAccountBucket
	case a.Kind == KindDebt:
		kind = DebtAccountBucket
	default:
		kind = ExternalAccountBucket
	}
	b := s.reg.Get(kind, a.ID)
	if b == nil {
		return M(0, s.cfg.Currency)
	}
	if kind == AssetAccountBucket {
		// No valuation pass runs here, so track the cost basis rather
		// than a market value that would read zero.
		return b.Asset().Cost
	}
	return b.Value()
}
