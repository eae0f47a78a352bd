package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRoundTripIsByteIdentical(t *testing.T) {
	entries := map[string]string{
		"nicoplus_timeplus_sm1":              `[{"time":1,"memo":"<b>&amp;</b>"}]`,
		"nicoplus_timeplus_sm2":              `[10,20]`,
		"nicoplus_timeplus_auto_add_enabled": "true",
		"nicoplus_timeplus_odd":              "not json at all ★\n",
	}

	blob, err := EncodeBackup(entries)
	require.NoError(t, err)

	got, err := DecodeBackup(blob, "nicoplus_timeplus_")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestDecodeBackupRejectsForeignKeys(t *testing.T) {
	_, err := DecodeBackup(`{"nicoplus_timeplus_a":"[]","other":"x"}`, "nicoplus_timeplus_")
	require.ErrorIs(t, err, ErrMalformedBackup)
	assert.Contains(t, err.Error(), "other")
}

func TestDecodeBackupRejectsMalformed(t *testing.T) {
	for _, blob := range []string{"", "null", "[]", `{"nicoplus_timeplus_a": 1}`, "{"} {
		_, err := DecodeBackup(blob, "nicoplus_timeplus_")
		assert.ErrorIsf(t, err, ErrMalformedBackup, "blob %q", blob)
	}
}
