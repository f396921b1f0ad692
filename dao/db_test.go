package dao

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
	"github.com/stretchr/testify/require"
)

type errorHandler interface {
	Error(args ...interface{})
}

func createDB(t errorHandler) (Db, func()) {
	dir, err := os.MkdirTemp(os.TempDir(), "storm")
	if err != nil {
		t.Error(err)
	}
	db, err := Open(filepath.Join(dir, "storm.db"))
	if err != nil {
		t.Error(err)
	}

	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestGetClientSingleton(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "storm")
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "storm.db")
	db, err := GetClient(dbPath)
	require.NoError(t, err)

	defer func() {
		db.Close()
		os.RemoveAll(dir)
	}()

	require.FileExists(t, dbPath, "Expected that db file exists")

	db2, err := GetClient(dbPath)
	require.NoError(t, err)

	require.Equal(t, db, db2)
}

func TestOpenExistingDb(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	stormDb := db.(*storm.DB)
	dbPath := stormDb.Bolt.Path()
	require.NoError(t, NewSiteDao(db).Save(model.Site{Id: 1, Name: "hudson-valley"}))
	_ = stormDb.Close()

	clnt, err := Open(dbPath)
	require.NoError(t, err)
	defer clnt.Close()

	site, err := NewSiteDao(clnt).GetOneById(1)
	require.NoError(t, err)
	require.Equal(t, "hudson-valley", site.Name)
}

func TestErrorPredicates(t *testing.T) {
	require.True(t, IsNotFound(storm.ErrNotFound))
	require.True(t, IsDuplicate(storm.ErrAlreadyExists))
	require.False(t, IsNotFound(storm.ErrAlreadyExists))
	require.False(t, IsDuplicate(nil))
}
