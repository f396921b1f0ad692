package dto

// Inbound is a mobile originated message as posted by the gateway.
type Inbound struct {
	To         string `query:"smsto" validate:"required,numeric,max=10"`
	From       string `query:"smsfrom" validate:"required,numeric,len=10"`
	Date       string `query:"smsdate" validate:"required"`
	SmsId      string `query:"smsid" validate:"required,max=64"`
	Text       string `query:"smsmsg"`
	Bits       string `query:"bits" validate:"omitempty,numeric,max=2"`
	Network    string `query:"network" validate:"max=32"`
	Udh        string `query:"smsudh" validate:"max=255"`
	Smsc       string `query:"smsc" validate:"max=64"`
	Ucs2       string `query:"smsucs2" validate:"max=1024"`
	Note       string `query:"note" validate:"max=255"`
	Subaccount string `query:"subaccount" validate:"max=64"`
	Report     string `query:"report" validate:"max=16"`
	Vp         string `query:"vp" validate:"max=16"`
}

// Report is a delivery report callback.
type Report struct {
	From string `query:"smsfrom" validate:"required"`
	Date string `query:"smsdate" validate:"required"`
	Text string `query:"smsmsg" validate:"required,max=255"`
}

type OutboundStatus struct {
	Id         uint32         `json:"id"`
	ExternalId string         `json:"external_id"`
	To         string         `json:"to"`
	Text       string         `json:"text"`
	Template   string         `json:"template"`
	Status     string         `json:"status"`
	Reports    []ReportStatus `json:"reports"`
}

type ReportStatus struct {
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ReportedAt string `json:"reported_at"`
}
