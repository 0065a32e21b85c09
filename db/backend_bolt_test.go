package db

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func TestBoltBackend(t *testing.T) {
	var (
		fileName = filepath.Join(t.TempDir(), "TestBoltBackend.bolt")
		cfg      = NewBoltConfig(fileName)
		be       = NewBoltBackend(cfg)
	)

	if err := be.Open(); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := be.Close(); err != nil {
			t.Error(err)
		}
	}()

	if _, err := be.Get("test1", []byte("does-not-exist")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s but actual=%s", ErrKeyNotFound, err)
	}

	if err := be.Put("test1", []byte("hello"), []byte("world")); err != nil {
		t.Error(err)
	}

	v, err := be.Get("test1", []byte("hello"))
	if err != nil {
		t.Error(err)
	}

	if expected, actual := "world", string(v); actual != expected {
		t.Errorf("Retrieved value did not match inserted value, expected=%v but actual=%v", expected, actual)
	}

	if _, err := be.Get("test1", []byte("nope")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s for missing key in existing table but actual=%s", ErrKeyNotFound, err)
	}

	if n, err := be.Len("test1"); err != nil {
		t.Error(err)
	} else if expected, actual := 1, n; actual != expected {
		t.Errorf("Expected len=%v but actual=%v", expected, actual)
	}
}

func TestBoltBackendSequenceAndDrop(t *testing.T) {
	be := NewBoltBackend(NewBoltConfig(filepath.Join(t.TempDir(), "seq.bolt")))
	if err := be.Open(); err != nil {
		t.Fatal(err)
	}
	defer be.Close()

	for i := uint64(1); i <= 3; i++ {
		seq, err := be.NextSequence("t")
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := i, seq; actual != expected {
			t.Errorf("Expected seq=%v but actual=%v", expected, actual)
		}
		if err := be.Put("t", []byte{byte(i)}, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	if err := be.Drop("t", "never-created"); err != nil {
		t.Fatal(err)
	}
	if n, _ := be.Len("t"); n != 0 {
		t.Errorf("Expected dropped table to be empty but len=%v", n)
	}
}

func TestBoltBackendOpenReleasesHandleOnInitFailure(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "init-failure.bolt")

	be := NewBoltBackend(NewBoltConfig(fileName))
	if err := be.Open(); err != nil {
		t.Fatal(err)
	}
	if err := be.Close(); err != nil {
		t.Fatal(err)
	}

	// Bucket creation cannot succeed on a read-only handle.
	roCfg := NewBoltConfig(fileName)
	roCfg.BoltOptions = &bolt.Options{ReadOnly: true, Timeout: roCfg.BoltOptions.Timeout}
	ro := NewBoltBackend(roCfg)
	if err := ro.Open(); err == nil {
		t.Fatal("Expected open of read-only ledger to fail initialization")
	}
	if ro.db != nil {
		t.Errorf("Expected db handle to be released after failed open but actual=%v", ro.db)
	}
	if err := ro.Close(); err != nil {
		t.Errorf("Expected close after failed open to be a no-op but actual=%s", err)
	}

	be = NewBoltBackend(NewBoltConfig(fileName))
	if err := be.Open(); err != nil {
		t.Fatalf("Expected reopen after failed open to succeed but actual=%s", err)
	}
	if err := be.Close(); err != nil {
		t.Error(err)
	}
}
