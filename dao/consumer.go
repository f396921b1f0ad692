package dao

import (
	"errors"
	"strings"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
)

// ErrAlreadyLinked is returned by Link when the consumer already belongs to a subscriber.
var ErrAlreadyLinked = errors.New("consumer is already linked")

type ConsumerDao interface {
	//GetOneByEmail returns consumer by email, case insensitive
	GetOneByEmail(email string) (model.Consumer, error)
	//GetOneBySubscriberId returns the consumer linked to a subscriber
	GetOneBySubscriberId(subscriberId uint32) (model.Consumer, error)
	//Create creates consumer record, fails with a duplicate error if the email is taken
	//or the subscriber already has a consumer
	Create(consumer model.Consumer) (model.Consumer, error)
	//Link attaches an unlinked consumer to a subscriber, filling a blank consumer zip with the given one.
	//Fails with ErrAlreadyLinked if the consumer has a subscriber and with a duplicate error
	//if the subscriber has another consumer
	Link(consumerId, subscriberId uint32, zip string, siteId uint32) (model.Consumer, error)
}

func NewConsumerDao(db Db) ConsumerDao {
	return &consumerDao{db: db}
}

type consumerDao struct {
	db Db
}

func (d consumerDao) GetOneByEmail(email string) (consumer model.Consumer, err error) {
	err = d.db.One("Email", strings.ToLower(strings.TrimSpace(email)), &consumer)
	return
}

func (d consumerDao) GetOneBySubscriberId(subscriberId uint32) (consumer model.Consumer, err error) {
	err = d.db.One("SubscriberId", subscriberId, &consumer)
	return
}

func (d consumerDao) Create(consumer model.Consumer) (model.Consumer, error) {
	consumer.Id = 0
	consumer.Email = strings.ToLower(strings.TrimSpace(consumer.Email))
	consumer.CreatedAt = time.Now()
	err := d.db.Save(&consumer)
	return consumer, err
}

func (d consumerDao) Link(consumerId, subscriberId uint32, zip string, siteId uint32) (model.Consumer, error) {
	var consumer model.Consumer
	err := inTx(d.db, func(tx storm.Node) error {
		if err := tx.One("Id", consumerId, &consumer); err != nil {
			return err
		}
		if consumer.HasSubscriber() {
			return ErrAlreadyLinked
		}

		consumer.SubscriberId = subscriberId
		if strings.TrimSpace(consumer.ZipPostal) == "" && zip != "" && zip != model.UnknownZip {
			consumer.ZipPostal = zip
			consumer.SiteId = siteId
		}
		//unique SubscriberId index rejects a second consumer for the subscriber
		return tx.Save(&consumer)
	})

	return consumer, err
}
