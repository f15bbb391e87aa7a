package splitzip

import "errors"

// Create builds a split archive at out from the given source paths in one
// call. It is equivalent to NewWriter, Add for each source, Close. On any
// error the writer is aborted, leaving whatever volumes exist without a
// central directory.
func Create(out string, sources []string, splitSize int64, opts ...Option) ([]string, error) {
	w, err := NewWriter(out, splitSize, opts...)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if err := w.Add(src); err != nil {
			return nil, errors.Join(err, w.Abort())
		}
	}
	paths, err := w.Close()
	if err != nil {
		return nil, errors.Join(err, w.Abort())
	}
	return paths, nil
}
