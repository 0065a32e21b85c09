// Package db is the run ledger: a local bolt file recording each cloner
// invocation and the candidates it produced.  It is history only and is never
// consulted to answer a search.
package db

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

const (
	TableMetadata = "ledger-metadata"
	TableRuns     = "runs"

	MetaLastRunID = "last-run-id"
)

var (
	ErrKeyNotFound = errors.New("requested key not found")
)

type Client struct {
	be Backend
}

// NewClient constructs a ledger client over a bolt file.
func NewClient(config *BoltConfig) *Client {
	return newClient(NewBoltBackend(config))
}

func newClient(be Backend) *Client {
	client := &Client{
		be: be,
	}
	return client
}

func (client *Client) Open() error {
	return client.be.Open()
}

func (client *Client) Close() error {
	return client.be.Close()
}

// Purge empties the named tables, or every ledger table when none are named.
func (client *Client) Purge(tables ...string) error {
	if len(tables) == 0 {
		tables = []string{TableMetadata, TableRuns}
	}
	return client.be.Drop(tables...)
}

// RunSave assigns run an ID (when it lacks one) and stores it.
func (client *Client) RunSave(run *domain.Run) error {
	if run.ID == 0 {
		id, err := client.be.NextSequence(TableRuns)
		if err != nil {
			return fmt.Errorf("allocating run id: %s", err)
		}
		run.ID = id
	}

	v, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshalling run %v: %s", run.ID, err)
	}
	if err := client.be.Put(TableRuns, runKey(run.ID), v); err != nil {
		return fmt.Errorf("saving run %v: %s", run.ID, err)
	}
	if err := client.MetaSave(MetaLastRunID, fmt.Sprint(run.ID)); err != nil {
		return err
	}
	log.WithField("run", run.ID).WithField("candidates", len(run.Candidates)).Debug("Saved run to ledger")
	return nil
}

func (client *Client) Run(id uint64) (*domain.Run, error) {
	v, err := client.be.Get(TableRuns, runKey(id))
	if err != nil {
		return nil, err
	}
	run := &domain.Run{}
	if err := json.Unmarshal(v, run); err != nil {
		return nil, fmt.Errorf("unmarshalling run %v: %s", id, err)
	}
	return run, nil
}

// Runs iterates over every stored run in ID order.
func (client *Client) Runs(fn func(run *domain.Run)) error {
	return client.RunsWithBreak(func(run *domain.Run) bool {
		fn(run)
		return true
	})
}

// RunsWithBreak iterates over stored runs until fn returns false.
func (client *Client) RunsWithBreak(fn func(run *domain.Run) bool) error {
	var decodeErr error
	if err := client.be.EachRowWithBreak(TableRuns, func(k []byte, v []byte) bool {
		run := &domain.Run{}
		if decodeErr = json.Unmarshal(v, run); decodeErr != nil {
			decodeErr = fmt.Errorf("unmarshalling run %v: %s", binary.BigEndian.Uint64(k), decodeErr)
			return false
		}
		return fn(run)
	}); err != nil {
		return err
	}
	return decodeErr
}

func (client *Client) RunsLen() (int, error) {
	return client.be.Len(TableRuns)
}

func (client *Client) MetaSave(key string, value string) error {
	if err := client.be.Put(TableMetadata, []byte(key), []byte(value)); err != nil {
		return fmt.Errorf("saving metadata %q: %s", key, err)
	}
	return nil
}

func (client *Client) Meta(key string) (string, error) {
	v, err := client.be.Get(TableMetadata, []byte(key))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// runKey encodes id big-endian so bolt's byte ordering matches numeric order.
func runKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// WithClient is a convenience utility which handles DB client construction,
// open, and close.
func WithClient(config *BoltConfig, fn func(client *Client) error) (err error) {
	client := NewClient(config)

	if err = client.Open(); err != nil {
		err = fmt.Errorf("opening DB client: %s", err)
		return
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("closing DB client: %s", closeErr)
			} else {
				log.Errorf("Existing error before attempt to close DB client: %s", err)
				log.Errorf("Also encountered problem closing DB client: %s", closeErr)
			}
		}
	}()

	if err = fn(client); err != nil {
		return
	}

	return
}
