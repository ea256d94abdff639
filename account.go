package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

// AccountKind classifies the accounts the engine needs to distinguish.
type AccountKind int

const (
	// KindMoney is a deposit account holding a cash balance, optionally
	// interest bearing.
	KindMoney AccountKind = iota
	// KindDebt is a loan or credit account whose balance is owed.
	KindDebt
	// KindPriced is a security holding valued at a market price.
	KindPriced
	// KindExternal is a payee or income source outside the household.
	KindExternal
	// KindTaxAuthority is the external account receiving tax credits.
	KindTaxAuthority
)

func (k AccountKind) String() string {
	switch k {
	case KindMoney:
		return "money"
	case KindDebt:
		return "debt"
	case KindPriced:
		return "security"
	case KindExternal:
		return "external"
	case KindTaxAuthority:
		return "taxman"
	default:
		return "unknown"
	}
}

// ParseAccountKind parses the persisted form of an account kind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "money":
		return KindMoney, nil
	case "debt":
		return KindDebt, nil
	case "security":
		return KindPriced, nil
	case "external":
		return KindExternal, nil
	case "taxman":
		return KindTaxAuthority, nil
	default:
		return 0, fmt.Errorf("unknown account kind %q", s)
	}
}

// MarshalJSON implements the json.Marshaler interface for AccountKind.
func (k AccountKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// UnmarshalJSON implements the json.Unmarshaler interface for AccountKind.
func (k *AccountKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAccountKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Account is the reference-data descriptor the engine needs for one account.
// The full master-data model (currencies, encryption, UI metadata) lives with
// the caller; only identity and classification reach the engine.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Kind     AccountKind `json:"kind"`
	Category string      `json:"category,omitempty"` // reporting category for summaries
	Currency string      `json:"currency,omitempty"`
	// Recovered marks an external account whose receipts reduce expense
	// (refunds, cashback) instead of counting as income.
	Recovered bool `json:"recovered,omitempty"`
}

// IsPriced reports whether the account is a market-priced security holding.
func (a *Account) IsPriced() bool { return a.Kind == KindPriced }

// IsExternal reports whether the account sits outside the household.
func (a *Account) IsExternal() bool { return a.Kind == KindExternal || a.Kind == KindTaxAuthority }

// AccountSet is an indexed collection of account descriptors.
type AccountSet struct {
	accounts map[string]*Account
	order    []string
}

// NewAccountSet creates an empty account set.
func NewAccountSet() *AccountSet {
	return &AccountSet{accounts: make(map[string]*Account)}
}

// Add registers accounts in the set. Re-adding an ID replaces the descriptor
// but keeps its original position.
func (s *AccountSet) Add(accounts ...*Account) error {
	for _, a := range accounts {
		if a.ID == "" {
			return fmt.Errorf("account %q has no id", a.Name)
		}
		if _, exists := s.accounts[a.ID]; !exists {
			s.order = append(s.order, a.ID)
		}
		s.accounts[a.ID] = a
	}
	return nil
}

// Get returns the account with the given id, or nil.
func (s *AccountSet) Get(id string) *Account { return s.accounts[id] }

// TaxAuthority returns the designated tax-authority account, or nil if the
// set declares none.
func (s *AccountSet) TaxAuthority() *Account {
	for _, id := range s.order {
		if s.accounts[id].Kind == KindTaxAuthority {
			return s.accounts[id]
		}
	}
	return nil
}

// All iterates accounts in declaration order.
func (s *AccountSet) All() iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, id := range s.order {
			if !yield(s.accounts[id]) {
				return
			}
		}
	}
}

// Len returns the number of accounts in the set.
func (s *AccountSet) Len() int { return len(s.order) }

// DecodeAccounts reads account descriptors from a stream of JSONL data.
func DecodeAccounts(r io.Reader) (*AccountSet, error) {
	set := NewAccountSet()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var a Account
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("invalid account on line %d: %w", line, err)
		}
		if err := set.Add(&a); err != nil {
			return nil, fmt.Errorf("invalid account on line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// EncodeAccounts writes the set as JSONL in declaration order.
func EncodeAccounts(w io.Writer, set *AccountSet) error {
	for a := range set.All() {
		var jw jsonObjectWriter
		jw.Append("id", a.ID)
		jw.Optional("name", a.Name)
		jw.Append("kind", a.Kind)
		jw.Optional("category", a.Category)
		jw.Optional("currency", a.Currency)
		jw.Optional("recovered", a.Recovered)
		b, err := jw.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}
