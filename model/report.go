package model

import "time"

const (
	//custom statuses
	NEW         string = "NEW"
	SUBMIT_OK          = "SM_OK"
	SUBMIT_FAIL        = "SM_FAIL"

	//delivery report statuses
	DELIVRD = "DELIVRD"
	EXPIRED = "EXPIRED"
	DELETED = "DELETED"
	ACCEPTD = "ACCEPTD"
	UNDELIV = "UNDELIV"
	REJECTD = "REJECTD"
	UNKNOWN = "UNKNOWN"
	ENROUTE = "ENROUTE"
	BUFFRED = "BUFFRED"
)

var reportStatuses = map[string]bool{
	DELIVRD: true,
	EXPIRED: true,
	DELETED: true,
	ACCEPTD: true,
	UNDELIV: true,
	REJECTD: true,
	UNKNOWN: true,
	ENROUTE: true,
	BUFFRED: true,
}

// IsReportStatus reports whether status is one the carrier sends in delivery reports.
func IsReportStatus(status string) bool {
	return reportStatuses[status]
}

var finalStatuses = map[string]bool{
	DELIVRD: true,
	UNDELIV: true,
	EXPIRED: true,
	REJECTD: true,
	DELETED: true,
}

// IsFinalStatus reports whether no later delivery report can change status.
func IsFinalStatus(status string) bool {
	return finalStatuses[status]
}

type DeliveryReport struct {
	Id         uint32 `storm:"id,increment"`
	OutboundId uint32 `storm:"index"`
	ExternalId string `storm:"index"`
	Status     string
	Reason     string
	Raw        string
	ReportedAt time.Time
	CreatedAt  time.Time `storm:"index"`
}
