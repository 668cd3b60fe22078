package kycapi

import (
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// progressInterval throttles intermediate progress callbacks.
const progressInterval = 100 * time.Millisecond

// progressReader streams data in chunks and reports bytes sent.
// Intermediate reports are throttled; the final report is always delivered.
type progressReader struct {
	data   []byte
	off    int
	chunk  int
	report domain.ProgressFunc
	every  rate.Sometimes
	final  sync.Once
}

func newProgressReader(data []byte, chunk int, report domain.ProgressFunc) *progressReader {
	if report == nil {
		report = func(domain.Progress) {}
	}
	return &progressReader{
		data:   data,
		chunk:  chunk,
		report: report,
		every:  rate.Sometimes{First: 1, Interval: progressInterval},
	}
}

func (r *progressReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		r.done()
		return 0, io.EOF
	}

	n := min(len(p), r.chunk, len(r.data)-r.off)
	copy(p, r.data[r.off:r.off+n])
	r.off += n

	if r.off == len(r.data) {
		r.done()
	} else {
		sent := int64(r.off)
		r.every.Do(func() {
			r.report(domain.Progress{Sent: sent, Total: int64(len(r.data))})
		})
	}
	return n, nil
}

func (r *progressReader) done() {
	r.final.Do(func() {
		total := int64(len(r.data))
		r.report(domain.Progress{Sent: total, Total: total})
	})
}
