// Package history persists the last completed run's results and failed-test
// set across TUI restarts, keyed by project file path. This is additive to
// the in-session tree state: on a fresh launch it lets "run last failures"
// and last-run status badges survive a restart instead of starting blank.
package history

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "runs"

// DB wraps a bbolt database storing one Entry per project.
type DB struct {
	db *bolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Entry is the last-run snapshot stored for one project.
type Entry struct {
	LastRun     int64    // unix seconds
	AllPassed   bool
	FailedTests []string // fully-qualified names
}

// encode lays the entry out as: [LastRun:8][AllPassed:1][Count:4]
// then, per failed test, [NameLen:4][Name:NameLen].
func encode(e Entry) []byte {
	size := 13
	for _, n := range e.FailedTests {
		size += 4 + len(n)
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.LastRun))
	if e.AllPassed {
		buf[8] = 1
	}
	binary.LittleEndian.PutUint32(buf[9:13], uint32(len(e.FailedTests)))
	pos := 13
	for _, n := range e.FailedTests {
		binary.LittleEndian.PutUint32(buf[pos:pos+4], uint32(len(n)))
		pos += 4
		copy(buf[pos:pos+len(n)], n)
		pos += len(n)
	}
	return buf
}

func decode(data []byte) Entry {
	if len(data) < 13 {
		return Entry{}
	}
	e := Entry{
		LastRun:   int64(binary.LittleEndian.Uint64(data[0:8])),
		AllPassed: data[8] == 1,
	}
	count := binary.LittleEndian.Uint32(data[9:13])
	pos := 13
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			break
		}
		nameLen := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+nameLen > len(data) {
			break
		}
		e.FailedTests = append(e.FailedTests, string(data[pos:pos+nameLen]))
		pos += nameLen
	}
	return e
}

// Save records the outcome of a completed run for projectFile.
func (d *DB) Save(projectFile string, e Entry) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put([]byte(projectFile), encode(e))
	})
}

// Load returns the last saved entry for projectFile, or the zero Entry if
// none exists.
func (d *DB) Load(projectFile string) Entry {
	var e Entry
	d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(projectFile))
		if data == nil {
			return nil
		}
		e = decode(data)
		return nil
	})
	return e
}
