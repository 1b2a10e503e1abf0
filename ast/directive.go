package ast

import "time"

// CommodityPrice records the price of one commodity in terms of another at a
// point in time. It stands on its own and is not tied to any transaction.
//
// Example:
//
//	P 2017-11-12 12:00:00 mBH 5.00 PLN
type CommodityPrice struct {
	Pos       Position
	DateTime  time.Time
	Commodity string
	Amount    Amount
}

func (c *CommodityPrice) Position() Position { return c.Pos }

// Include references another journal file. The path is recorded as written;
// resolving it is the job of the loader package.
//
// Example:
//
//	include accounts.ledger
//	include 2018/*.ledger
type Include struct {
	Pos  Position
	Path string
}

func (i *Include) Position() Position { return i.Pos }
