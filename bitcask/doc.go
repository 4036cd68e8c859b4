// Package bitcask provides an embeddable, single-file key-value store
// backed by an append-only log and an in-memory index.
//
// Example:
//
//	db, err := bitcask.Open("data/app.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.Set([]byte("foo"), []byte("bar"))
//	val, err := db.Get([]byte("foo"))
//
//	it := db.ScanPrefix([]byte("f"))
//	for it.Next() {
//	    fmt.Printf("%s=%s\n", it.Key(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// A DB must not be used from several goroutines at once without external
// locking. Opening a file that another DB holds fails with ErrLocked.
package bitcask
