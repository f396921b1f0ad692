package dao

import (
	"errors"
	"sync"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/index"
	"github.com/asdine/storm/v3/q"
	"github.com/dilshat/sms-responder/model"
	bolt "go.etcd.io/bbolt"
)

type Db interface {
	Init(data interface{}) error
	One(fieldName string, value interface{}, to interface{}) error
	Update(data interface{}) error
	UpdateField(data interface{}, fieldName string, value interface{}) error
	Save(data interface{}) error
	DeleteStruct(data interface{}) error
	Select(matchers ...q.Matcher) storm.Query
	Find(fieldName string, value interface{}, to interface{}, options ...func(q *index.Options)) error
	All(to interface{}, options ...func(*index.Options)) error
	Begin(writable bool) (storm.Node, error)
	Close() error
}

var (
	once     sync.Once
	instance Db
)

var models = []interface{}{
	&model.Carrier{},
	&model.Site{},
	&model.MobilePhone{},
	&model.Subscriber{},
	&model.Consumer{},
	&model.InboundMessage{},
	&model.OutboundMessage{},
	&model.ResponseLink{},
	&model.DeliveryReport{},
}

// GetClient returns the process wide database, opening it on first use.
func GetClient(dbFilePath string) (Db, error) {
	var err error

	once.Do(func() {
		instance, err = Open(dbFilePath)
	})

	return instance, err
}

// Open opens the storm database at path and makes sure every bucket and index exists.
func Open(dbFilePath string) (Db, error) {
	db, err := storm.Open(dbFilePath, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second, ReadOnly: false}))
	if err != nil {
		return nil, err
	}

	//init db structs, no-op for the ones that already exist
	for _, m := range models {
		if err = db.Init(m); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, storm.ErrNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, storm.ErrAlreadyExists)
}

func removeOlderThanDays(db Db, days int, data interface{}) error {
	err := db.Select(q.Lt("CreatedAt", time.Now().Add(-24*time.Duration(days)*time.Hour))).Delete(data)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// inTx runs fn inside a writable transaction and commits when fn succeeds.
func inTx(db Db, fn func(tx storm.Node) error) error {
	tx, err := db.Begin(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
