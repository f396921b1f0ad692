package dao

import (
	"time"

	"github.com/dilshat/sms-responder/model"
)

type ReportDao interface {
	//Create stores delivery report
	Create(report model.DeliveryReport) (model.DeliveryReport, error)
	//GetAllByOutboundId returns all reports received for an outbound message
	GetAllByOutboundId(outboundId uint32) ([]model.DeliveryReport, error)
	//GetAll returns all reports
	GetAll() ([]model.DeliveryReport, error)
	//RemoveOlderThanDays removes all reports older than {days}
	RemoveOlderThanDays(days int) error
}

func NewReportDao(db Db) ReportDao {
	return &reportDao{db: db}
}

type reportDao struct {
	db Db
}

func (d reportDao) Create(report model.DeliveryReport) (model.DeliveryReport, error) {
	report.Id = 0
	report.CreatedAt = time.Now()
	err := d.db.Save(&report)
	return report, err
}

func (d reportDao) GetAllByOutboundId(outboundId uint32) (reports []model.DeliveryReport, err error) {
	err = d.db.Find("OutboundId", outboundId, &reports)
	return
}

func (d reportDao) GetAll() (reports []model.DeliveryReport, err error) {
	err = d.db.All(&reports)
	return
}

func (d reportDao) RemoveOlderThanDays(days int) error {
	return removeOlderThanDays(d.db, days, &model.DeliveryReport{})
}
