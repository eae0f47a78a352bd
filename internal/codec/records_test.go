package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeplus/internal/marker"
)

func TestEncodeRecordsOmitsNilMemo(t *testing.T) {
	got, err := EncodeRecords([]marker.Marker{{Time: 1}, {Time: 2, Memo: marker.Memo("")}})

	require.NoError(t, err)
	assert.Equal(t, `[{"time":1},{"time":2,"memo":""}]`, got)
}

func TestEncodeRecordsEmpty(t *testing.T) {
	got, err := EncodeRecords(nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestDecodeRecordsMigratesLegacyIntegers(t *testing.T) {
	got, skipped, err := DecodeRecords(`[30, 10, {"time": 20, "memo": "x"}]`)

	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []int64{10, 20, 30}, marker.Times(got))
	assert.False(t, got[0].HasMemo())
	assert.Equal(t, "x", got[1].MemoText())
}

func TestDecodeRecordsSkipsBadElements(t *testing.T) {
	got, skipped, err := DecodeRecords(`[1, 2.5, -3, "4", {"memo": "no time"}, {"time": 5, "memo": 7}, {"time": 6, "memo": null}]`)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 6}, marker.Times(got))
	assert.False(t, got[1].HasMemo())
	assert.Len(t, skipped, 5)
}

func TestDecodeRecordsRejectsNonArray(t *testing.T) {
	_, _, err := DecodeRecords(`{"time": 1}`)
	assert.Error(t, err)
}

func TestDecodeRecordsEmptyText(t *testing.T) {
	got, _, err := DecodeRecords("  ")

	require.NoError(t, err)
	assert.Empty(t, got)
}
