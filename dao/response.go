package dao

import (
	"github.com/dilshat/sms-responder/model"
)

type ResponseDao interface {
	//Link records that outbound message was sent in response to inbound one, no-op for a known pair
	Link(inboundId, outboundId uint32, isOptOut bool) error
	//GetAllByInboundId returns every link of an inbound message
	GetAllByInboundId(inboundId uint32) ([]model.ResponseLink, error)
}

func NewResponseDao(db Db) ResponseDao {
	return &responseDao{db: db}
}

type responseDao struct {
	db Db
}

func (d responseDao) Link(inboundId, outboundId uint32, isOptOut bool) error {
	link := &model.ResponseLink{
		Key:        model.ResponseKey(inboundId, outboundId),
		InboundId:  inboundId,
		OutboundId: outboundId,
		IsOptOut:   isOptOut,
	}
	err := d.db.Save(link)
	if IsDuplicate(err) {
		return nil
	}
	return err
}

func (d responseDao) GetAllByInboundId(inboundId uint32) (links []model.ResponseLink, err error) {
	err = d.db.Find("InboundId", inboundId, &links)
	if IsNotFound(err) {
		return []model.ResponseLink{}, nil
	}
	return
}
