package dao

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
)

type OutboundDao interface {
	//Create creates outbound message record and returns it with its id
	Create(msg model.OutboundMessage) (model.OutboundMessage, error)
	//GetOneById returns message by id
	GetOneById(id uint32) (model.OutboundMessage, error)
	//GetOneByExternalId returns message by the id assigned by the carrier
	GetOneByExternalId(externalId string) (model.OutboundMessage, error)
	//UpdateStatus updates the delivery status of the message unless a final status is already stored.
	//Returns false when the stored status was kept
	UpdateStatus(id uint32, status string) (bool, error)
	//GetAll returns all messages
	GetAll() ([]model.OutboundMessage, error)
}

func NewOutboundDao(db Db) OutboundDao {
	return &outboundDao{db: db}
}

type outboundDao struct {
	db Db
}

func (d outboundDao) Create(msg model.OutboundMessage) (model.OutboundMessage, error) {
	msg.Id = 0
	msg.CreatedAt = time.Now()
	err := d.db.Save(&msg)
	return msg, err
}

func (d outboundDao) GetOneById(id uint32) (msg model.OutboundMessage, err error) {
	err = d.db.One("Id", id, &msg)
	return
}

func (d outboundDao) GetOneByExternalId(externalId string) (msg model.OutboundMessage, err error) {
	err = d.db.One("ExternalId", externalId, &msg)
	return
}

func (d outboundDao) UpdateStatus(id uint32, status string) (bool, error) {
	updated := false
	err := inTx(d.db, func(tx storm.Node) error {
		var msg model.OutboundMessage
		if err := tx.One("Id", id, &msg); err != nil {
			return err
		}
		//reports arrive unordered
		if model.IsFinalStatus(msg.Status) {
			return nil
		}
		updated = true
		return tx.UpdateField(&model.OutboundMessage{Id: id}, "Status", status)
	})

	return updated, err
}

func (d outboundDao) GetAll() (messages []model.OutboundMessage, err error) {
	err = d.db.All(&messages)
	return
}
