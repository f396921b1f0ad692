package model

import "fmt"

// ResponseLink ties an inbound message to one outbound message it provoked.
type ResponseLink struct {
	Id         uint32 `storm:"id,increment"`
	Key        string `storm:"unique"`
	InboundId  uint32 `storm:"index"`
	OutboundId uint32 `storm:"index"`
	IsOptOut   bool
}

func ResponseKey(inboundId, outboundId uint32) string {
	return fmt.Sprintf("%d:%d", inboundId, outboundId)
}
