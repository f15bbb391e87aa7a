// Package splitzip writes multi-volume ("split") ZIP archives: a sequence
// of fixed-capacity volume files (.z01, .z02, …) plus a final .zip volume
// carrying the central directory. The output follows the standard ZIP
// container format, so split-aware tools such as 7-Zip and Info-ZIP can
// extract it, and a single-volume archive is an ordinary ZIP file.
//
// Entry data streams through the compressor in fixed-size chunks and may
// span volume boundaries; structural headers never do. Each entry's CRC-32
// and sizes are patched into its local header after the data is written,
// so nothing needs to be buffered or known up front.
//
// # Quick Start
//
// Archive a directory into volumes of at most 100 MB:
//
//	w, err := splitzip.NewWriter("backup.zip", 100*1000*1000)
//	if err != nil {
//	    return err
//	}
//	defer w.Abort()
//	if err := w.Add("./data"); err != nil {
//	    return err
//	}
//	volumes, err := w.Close()
//
// Or in one call:
//
//	volumes, err := splitzip.Create("backup.zip", []string{"./data"}, size)
//
// In-memory and streamed sources work the same way:
//
//	err = w.AddBytes("notes/readme.txt", []byte("hello"))
//	err = w.AddReader("logs/app.log", r, splitzip.AddWithSize(n))
//
// # Volumes
//
// If everything fits in one volume, the only file produced is the .zip
// itself. Abandoning a writer with Abort leaves the volumes without a
// central directory, which standard tools reject; archives become readable
// only through a successful Close.
package splitzip
