package ast

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrInvalidDate is returned when a date or time does not exist in the calendar,
// such as February 30th or hour 25.
var ErrInvalidDate = errors.New("invalid calendar date")

// ErrNaN is returned when a float tag value is NaN.
var ErrNaN = errors.New("float tag value must not be NaN")

// Date represents a calendar day. Dates are always valid calendar days in UTC;
// construct them with NewDate.
type Date struct {
	time.Time
}

// IsZero reports whether d is nil or the zero time. A nil *Date is an unset
// optional date.
func (d *Date) IsZero() bool {
	return d == nil || d.Time.IsZero()
}

// NewDate returns the date for the given year, month and day, or an error
// wrapping ErrInvalidDate when the day does not exist.
func NewDate(year, month, day int) (Date, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return Date{Time: t}, nil
}

// MustDate is like NewDate but panics on an invalid date.
func MustDate(year, month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDateTime returns the UTC instant for the given calendar date and wall clock
// time, or an error wrapping ErrInvalidDate when either does not exist.
func NewDateTime(year, month, day, hour, minute, second int) (time.Time, error) {
	d, err := NewDate(year, month, day)
	if err != nil {
		return time.Time{}, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidDate, hour, minute, second)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second), nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Status is the clearing state of a transaction or posting.
type Status int

const (
	// NoStatus means no status marker was written.
	NoStatus Status = iota
	// Pending is written as "!".
	Pending
	// Cleared is written as "*".
	Cleared
)

// String returns the marker for the status, or an empty string for NoStatus.
func (s Status) String() string {
	switch s {
	case Pending:
		return "!"
	case Cleared:
		return "*"
	default:
		return ""
	}
}

// Reality tells whether a posting affects a real or a virtual account.
type Reality int

const (
	// Real postings are written with a bare account name.
	Real Reality = iota
	// BalancedVirtual postings are written as [Account] and must balance
	// among themselves.
	BalancedVirtual
	// UnbalancedVirtual postings are written as (Account) and are never
	// required to balance.
	UnbalancedVirtual
)

// Wrap surrounds an account name with the brackets of the reality.
func (r Reality) Wrap(account string) string {
	switch r {
	case BalancedVirtual:
		return "[" + account + "]"
	case UnbalancedVirtual:
		return "(" + account + ")"
	default:
		return account
	}
}

func (r Reality) String() string {
	switch r {
	case BalancedVirtual:
		return "balanced virtual"
	case UnbalancedVirtual:
		return "unbalanced virtual"
	default:
		return "real"
	}
}

// CommodityPosition is the side of the quantity a commodity symbol is written on.
type CommodityPosition int

const (
	// Left commodities precede the quantity without a space, as in $1.20.
	Left CommodityPosition = iota
	// Right commodities follow the quantity after one space, as in 1.20 USD.
	Right
)

// Commodity is a currency or any other unit of value.
type Commodity struct {
	Name     string
	Position CommodityPosition
}

// reservedCommodityRunes may not appear in an unquoted commodity symbol. They
// are used by prices, lots, balances and expressions.
const reservedCommodityRunes = "{}[]()~`!@#%^&*-=+\\'\",./?;"

// IsCommodityRune reports whether r may appear in an unquoted commodity symbol.
func IsCommodityRune(r rune) bool {
	if r == utf8.RuneError || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
		return false
	}
	return !strings.ContainsRune(reservedCommodityRunes, r)
}

// NeedsQuoting reports whether a commodity name has to be written in double
// quotes, as in "Frequent Flyer Miles".
func (c Commodity) NeedsQuoting() bool {
	if c.Name == "" {
		return true
	}
	for _, r := range c.Name {
		if !IsCommodityRune(r) {
			return true
		}
	}
	return false
}

// Amount is an exact quantity of a commodity.
//
// Example:
//
//	$1.20
//	-5.00 "Frequent Flyer Miles"
type Amount struct {
	Quantity  decimal.Decimal
	Commodity Commodity
}

// FormatQuantity renders a quantity keeping its scale, so 1.20 stays 1.20.
func FormatQuantity(q decimal.Decimal) string {
	if exp := q.Exponent(); exp < 0 {
		return q.StringFixed(-exp)
	}
	return q.String()
}

// Price is the exchange rate or lot cost attached to a posting amount. A unit
// price applies per unit of the posting's commodity ({..} or @), a total price
// to the posting as a whole ({{..}} or @@).
type Price struct {
	Amount Amount
	Total  bool
}

// Balance is the expected running balance written after "=" on a posting.
// The set of balances is closed: ZeroBalance and AmountBalance.
type Balance interface {
	balance()
}

// ZeroBalance asserts that the account holds nothing. It is written as a bare 0.
type ZeroBalance struct{}

// AmountBalance asserts the balance of a single commodity.
type AmountBalance struct {
	Amount Amount
}

func (ZeroBalance) balance()   {}
func (AmountBalance) balance() {}

// Tag is a named marker attached to a transaction or posting through its
// metadata comments. A tag without a value acts as a boolean flag.
//
// Example:
//
//	; :groceries:weekly:
//	; Payee: Corner Shop
//	; Receipt:: 42
type Tag struct {
	Name  string
	Value TagValue
}

// TagValue is the typed value of a tag. The set of values is closed:
// StringValue, IntegerValue, FloatValue and DateValue.
type TagValue interface {
	String() string
	tagValue()
}

// StringValue is the value of a "Name: value" tag.
type StringValue string

// IntegerValue is a typed "Name:: 42" value.
type IntegerValue int64

// FloatValue is a typed "Name:: 4.2" value. It is never NaN.
type FloatValue float64

// DateValue is a typed "Name:: [2018-10-01]" value.
type DateValue struct {
	Date Date
}

// NewFloatValue returns a FloatValue, rejecting NaN.
func NewFloatValue(f float64) (FloatValue, error) {
	if math.IsNaN(f) {
		return 0, ErrNaN
	}
	return FloatValue(f), nil
}

func (StringValue) tagValue()  {}
func (IntegerValue) tagValue() {}
func (FloatValue) tagValue()   {}
func (DateValue) tagValue()    {}

func (v StringValue) String() string { return string(v) }

func (v IntegerValue) String() string { return strconv.FormatInt(int64(v), 10) }

// String always contains a decimal point or an exponent so that the value
// reads back as a float rather than an integer.
func (v FloatValue) String() string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 64)
	if math.IsInf(float64(v), 0) {
		return s
	}
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}

func (v DateValue) String() string { return "[" + v.Date.String() + "]" }
