package dao

import (
	"strings"

	"github.com/dilshat/sms-responder/model"
)

type CarrierDao interface {
	//GetOneById returns carrier by id
	GetOneById(id uint32) (model.Carrier, error)
	//GetOneByName returns carrier by its gateway network name
	GetOneByName(name string) (model.Carrier, error)
	//GetOneByCode returns carrier by the code reported by the lookup API
	GetOneByCode(code string) (model.Carrier, error)
	//Upsert creates the carrier or replaces the one with the same name
	Upsert(carrier model.Carrier) (model.Carrier, error)
	//GetAll returns all carriers
	GetAll() ([]model.Carrier, error)
}

func NewCarrierDao(db Db) CarrierDao {
	return &carrierDao{db: db}
}

type carrierDao struct {
	db Db
}

func (d carrierDao) GetOneById(id uint32) (carrier model.Carrier, err error) {
	err = d.db.One("Id", id, &carrier)
	return
}

func (d carrierDao) GetOneByName(name string) (carrier model.Carrier, err error) {
	err = d.db.One("Name", strings.ToLower(strings.TrimSpace(name)), &carrier)
	return
}

func (d carrierDao) GetOneByCode(code string) (carrier model.Carrier, err error) {
	err = d.db.One("Code", code, &carrier)
	return
}

func (d carrierDao) Upsert(carrier model.Carrier) (model.Carrier, error) {
	carrier.Name = strings.ToLower(strings.TrimSpace(carrier.Name))

	existing, err := d.GetOneByName(carrier.Name)
	if err == nil {
		carrier.Id = existing.Id
	} else if !IsNotFound(err) {
		return model.Carrier{}, err
	}

	err = d.db.Save(&carrier)
	return carrier, err
}

func (d carrierDao) GetAll() (carriers []model.Carrier, err error) {
	err = d.db.All(&carriers)
	return
}
