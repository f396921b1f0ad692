package dao

import (
	"strings"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
)

type SiteDao interface {
	//GetOneById returns site by id
	GetOneById(id uint32) (model.Site, error)
	//FindByZip returns the site with the longest zip prefix matching zip
	FindByZip(zip string) (model.Site, error)
	//Save creates or replaces site
	Save(site model.Site) error
	//GetAll returns all sites
	GetAll() ([]model.Site, error)
}

func NewSiteDao(db Db) SiteDao {
	return &siteDao{db: db}
}

type siteDao struct {
	db Db
}

func (d siteDao) GetOneById(id uint32) (site model.Site, err error) {
	err = d.db.One("Id", id, &site)
	return
}

func (d siteDao) FindByZip(zip string) (model.Site, error) {
	sites, err := d.GetAll()
	if err != nil {
		return model.Site{}, err
	}

	var (
		found   model.Site
		longest int
	)
	for _, site := range sites {
		for _, prefix := range site.ZipPrefixes {
			if len(prefix) > longest && strings.HasPrefix(zip, prefix) {
				found = site
				longest = len(prefix)
			}
		}
	}

	if longest == 0 {
		return model.Site{}, storm.ErrNotFound
	}

	return found, nil
}

func (d siteDao) Save(site model.Site) error {
	return d.db.Save(&site)
}

func (d siteDao) GetAll() (sites []model.Site, err error) {
	err = d.db.All(&sites)
	return
}
