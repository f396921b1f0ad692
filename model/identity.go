package model

import "time"

const (
	// UnknownZip marks a subscriber that has not told us a zip code yet.
	UnknownZip = "unknown"

	// CouponAlerts is the text alerts distribution list.
	CouponAlerts uint32 = 1
	// AdvertiserList collects numbers interested in advertising.
	AdvertiserList uint32 = 2
)

type MobilePhone struct {
	Id           uint32 `storm:"id,increment"`
	Number       string `storm:"unique"`
	Verified     bool
	CarrierId    uint32 `storm:"index"`
	SubscriberId uint32 `storm:"index"`
	CreatedAt    time.Time
}

type Subscriber struct {
	Id            uint32 `storm:"id,increment"`
	ZipPostal     string
	SiteId        uint32 `storm:"index"`
	Subscriptions []uint32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s Subscriber) ZipKnown() bool {
	return s.ZipPostal != "" && s.ZipPostal != UnknownZip
}

func (s Subscriber) IsSubscribed() bool {
	return len(s.Subscriptions) > 0
}

func (s Subscriber) HasSubscription(list uint32) bool {
	for _, l := range s.Subscriptions {
		if l == list {
			return true
		}
	}
	return false
}

// Consumer is an email identified person, optionally linked to a Subscriber.
type Consumer struct {
	Id    uint32 `storm:"id,increment"`
	Email string `storm:"unique"`
	//zero when not linked, a subscriber has at most one consumer
	SubscriberId uint32 `storm:"unique"`
	ZipPostal    string
	SiteId       uint32
	CreatedAt    time.Time
}

func (c Consumer) HasSubscriber() bool {
	return c.SubscriberId != 0
}
