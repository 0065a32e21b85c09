package db

// Backend is a generic K/V persistence interface.
type Backend interface {
	Open() error
	Close() error
	Get(table string, key []byte) (value []byte, err error)
	Put(table string, key []byte, value []byte) error
	Drop(tables ...string) error
	Len(table string) (n int, err error)
	EachRow(table string, fn func(key []byte, value []byte)) error
	EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error
	// NextSequence returns a monotonically increasing integer for table.
	NextSequence(table string) (uint64, error)
}
