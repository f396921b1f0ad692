package dao

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
)

type PhoneDao interface {
	//GetOneByNumber returns mobile phone by its 10 digit number
	GetOneByNumber(number string) (model.MobilePhone, error)
	//GetOneBySubscriberId returns the mobile phone of a subscriber
	GetOneBySubscriberId(subscriberId uint32) (model.MobilePhone, error)
	//Create stores the subscriber and the phone bound to it in one transaction.
	//Returns a duplicate error when the number is already taken.
	Create(phone model.MobilePhone, subscriber model.Subscriber) (model.MobilePhone, model.Subscriber, error)
	//Update replaces the stored phone record
	Update(phone model.MobilePhone) error
}

func NewPhoneDao(db Db) PhoneDao {
	return &phoneDao{db: db}
}

type phoneDao struct {
	db Db
}

func (d phoneDao) GetOneByNumber(number string) (phone model.MobilePhone, err error) {
	err = d.db.One("Number", number, &phone)
	return
}

func (d phoneDao) GetOneBySubscriberId(subscriberId uint32) (phone model.MobilePhone, err error) {
	err = d.db.One("SubscriberId", subscriberId, &phone)
	return
}

func (d phoneDao) Create(phone model.MobilePhone, subscriber model.Subscriber) (model.MobilePhone, model.Subscriber, error) {
	now := time.Now()
	subscriber.Id = 0
	subscriber.CreatedAt = now
	subscriber.UpdatedAt = now
	phone.Id = 0
	phone.CreatedAt = now

	err := inTx(d.db, func(tx storm.Node) error {
		if err := tx.Save(&subscriber); err != nil {
			return err
		}
		phone.SubscriberId = subscriber.Id
		//unique Number index rejects the loser of a concurrent create
		return tx.Save(&phone)
	})
	if err != nil {
		return model.MobilePhone{}, model.Subscriber{}, err
	}

	return phone, subscriber, nil
}

func (d phoneDao) Update(phone model.MobilePhone) error {
	return d.db.Save(&phone)
}
