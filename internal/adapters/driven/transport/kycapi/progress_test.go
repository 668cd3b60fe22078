package kycapi

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

func TestProgressReader_ChunksAndFinalReport(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 10_000)
	var events []domain.Progress
	r := newProgressReader(data, 1024, func(p domain.Progress) { events = append(events, p) })

	buf := make([]byte, 4096)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1024, n, "reads are bounded by the chunk size")

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data[1024:], out)

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, domain.Progress{Sent: 1024, Total: 10_000}, events[0])
	assert.Equal(t, domain.Progress{Sent: 10_000, Total: 10_000}, events[len(events)-1])

	// The final report fires once even if Read is called again.
	count := len(events)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, events, count)
}

func TestProgressReader_NilReport(t *testing.T) {
	r := newProgressReader([]byte("abc"), 2, nil)

	out, err := io.ReadAll(r)

	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestProgressReader_Throttled(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100*1024)
	calls := 0
	r := newProgressReader(data, 1024, func(domain.Progress) { calls++ })

	_, err := io.ReadAll(r)

	require.NoError(t, err)
	// 100 chunks read back to back: the first and the final report get through.
	assert.Less(t, calls, 10)
	assert.GreaterOrEqual(t, calls, 2)
}
