package ast

// Transaction records a dated movement of value between accounts. The header
// carries the date, an optional effective date, an optional status, an optional
// code and a free-text description; comments and tags follow on their own lines,
// then one or more postings.
//
// At most one posting may leave out both its amount and its balance assertion.
// Its amount is implied by the other postings.
//
// Example:
//
//	2018-10-01=2018-10-14 ! (123) Marek Ogarek
//	  ; :groceries:
//	  Expenses:Food      $12.40
//	  Assets:Checking
type Transaction struct {
	Pos           Position
	Date          Date
	EffectiveDate *Date
	Status        Status
	Code          string
	Description   string
	Comment       string // Lines joined with "\n"
	Metadata      Metadata
	Postings      []*Posting
}

func (t *Transaction) Position() Position { return t.Pos }

// ElidedPostings returns the postings that have neither an amount nor a balance.
func (t *Transaction) ElidedPostings() []*Posting {
	var elided []*Posting
	for _, p := range t.Postings {
		if p.IsElided() {
			elided = append(elided, p)
		}
	}
	return elided
}

// Posting is one account line of a transaction.
//
// Example postings within transactions:
//
//	Assets:Brokerage      10 AAPL {$150.00} @ $155.00
//	[Budget:Food]         $-12.40
//	(Tracking:Miles)      120 MILES
//	Assets:Checking       $100.00 = $1,250.00
//	Assets:Cash
type Posting struct {
	Pos      Position
	Account  string // Name without reality brackets
	Reality  Reality
	Amount   *PostingAmount
	Balance  Balance
	Status   Status
	Comment  string // Lines joined with "\n"
	Metadata Metadata
}

// IsElided reports whether the posting has neither an amount nor a balance.
func (p *Posting) IsElided() bool {
	return p.Amount == nil && p.Balance == nil
}

// PostingAmount is the amount of a posting together with its optional lot
// price and price. Both are independent; when both are written the lot price
// comes first.
type PostingAmount struct {
	Amount   Amount
	LotPrice *Price
	Price    *Price
}

// Metadata holds what metadata comments declare for a transaction or a posting:
// date overrides written as [date=effective] and tags.
type Metadata struct {
	Date          *Date
	EffectiveDate *Date
	Tags          []Tag
}

// IsEmpty reports whether no metadata was declared.
func (m Metadata) IsEmpty() bool {
	return m.Date == nil && m.EffectiveDate == nil && len(m.Tags) == 0
}

// Tag returns the first tag with the given name.
func (m Metadata) Tag(name string) (Tag, bool) {
	for _, tag := range m.Tags {
		if tag.Name == name {
			return tag, true
		}
	}
	return Tag{}, false
}

// HasTag reports whether a tag with the given name is present.
func (m Metadata) HasTag(name string) bool {
	_, ok := m.Tag(name)
	return ok
}
