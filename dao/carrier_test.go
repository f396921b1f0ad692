package dao

import (
	"testing"

	"github.com/dilshat/sms-responder/model"
	"github.com/stretchr/testify/require"
)

func TestCarrierDao_Upsert(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	carrierDao := NewCarrierDao(db)

	created, err := carrierDao.Upsert(model.Carrier{Name: " Verizon ", Code: "VZW", Username: "u", Password: "p", IsMajor: true})
	require.NoError(t, err)
	require.True(t, created.Id > 0)
	require.Equal(t, "verizon", created.Name)

	updated, err := carrierDao.Upsert(model.Carrier{Name: "verizon", Code: "VZW", Username: "u2", Password: "p2"})
	require.NoError(t, err)
	require.Equal(t, created.Id, updated.Id)

	all, err := carrierDao.GetAll()
	require.NoError(t, err)
	require.Equal(t, 1, len(all))
	require.Equal(t, "u2", all[0].Username)
}

func TestCarrierDao_Lookups(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	carrierDao := NewCarrierDao(db)
	created, _ := carrierDao.Upsert(model.Carrier{Name: "att", Code: "ATT"})

	byName, err := carrierDao.GetOneByName("ATT")
	require.NoError(t, err)
	require.Equal(t, created.Id, byName.Id)

	byCode, err := carrierDao.GetOneByCode("ATT")
	require.NoError(t, err)
	require.Equal(t, created.Id, byCode.Id)

	_, err = carrierDao.GetOneByName("sprint")
	require.True(t, IsNotFound(err))
}

func TestSiteDao_FindByZip(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	siteDao := NewSiteDao(db)
	require.NoError(t, siteDao.Save(model.Site{Id: 1, Name: "hudson-valley", ZipPrefixes: []string{"125", "126"}}))
	require.NoError(t, siteDao.Save(model.Site{Id: 2, Name: "capital-area", ZipPrefixes: []string{"12", "1255"}}))

	site, err := siteDao.FindByZip("12550")
	require.NoError(t, err)
	require.Equal(t, uint32(2), site.Id)

	site, err = siteDao.FindByZip("12601")
	require.NoError(t, err)
	require.Equal(t, uint32(1), site.Id)

	_, err = siteDao.FindByZip("90210")
	require.True(t, IsNotFound(err))
}
