package model

import "time"

// EmptyText replaces an empty inbound body so that stored messages are never empty.
const EmptyText = " "

type InboundMessage struct {
	Id         uint32 `storm:"id,increment"`
	SmsId      string `storm:"unique"`
	From       string `storm:"index"`
	To         string
	Text       string
	Network    string
	Bits       string
	Udh        string
	Smsc       string
	Ucs2       string
	Note       string
	Subaccount string
	Report     string
	Vp         string
	SentAt     time.Time
	CreatedAt  time.Time `storm:"index"`
}

type OutboundMessage struct {
	Id uint32 `storm:"id,increment"`
	//assigned by the carrier, empty when the send failed
	ExternalId string `storm:"index"`
	To         string `storm:"index"`
	From       string
	Text       string
	Template   string
	Status     string
	CreatedAt  time.Time `storm:"index"`
}

// Sent reports whether the carrier accepted the message.
func (m OutboundMessage) Sent() bool {
	return m.ExternalId != ""
}
