package dao

import (
	"time"

	"github.com/dilshat/sms-responder/model"
)

type InboundDao interface {
	//Create stores the message, fails with a duplicate error if its SmsId was seen before
	Create(msg model.InboundMessage) (model.InboundMessage, error)
	//GetOneById returns message by id
	GetOneById(id uint32) (model.InboundMessage, error)
	//GetOneBySmsId returns message by gateway id
	GetOneBySmsId(smsId string) (model.InboundMessage, error)
	//GetAllByFrom returns all messages received from the phone
	GetAllByFrom(phone string) ([]model.InboundMessage, error)
	//Remove deletes the message with the given id
	Remove(id uint32) error
}

func NewInboundDao(db Db) InboundDao {
	return &inboundDao{db: db}
}

type inboundDao struct {
	db Db
}

func (d inboundDao) Create(msg model.InboundMessage) (model.InboundMessage, error) {
	msg.Id = 0
	msg.CreatedAt = time.Now()
	err := d.db.Save(&msg)
	return msg, err
}

func (d inboundDao) GetOneById(id uint32) (msg model.InboundMessage, err error) {
	err = d.db.One("Id", id, &msg)
	return
}

func (d inboundDao) GetOneBySmsId(smsId string) (msg model.InboundMessage, err error) {
	err = d.db.One("SmsId", smsId, &msg)
	return
}

func (d inboundDao) GetAllByFrom(phone string) (messages []model.InboundMessage, err error) {
	err = d.db.Find("From", phone, &messages)
	return
}

func (d inboundDao) Remove(id uint32) error {
	return d.db.DeleteStruct(&model.InboundMessage{Id: id})
}
