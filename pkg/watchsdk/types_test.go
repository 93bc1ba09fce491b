package watchsdk

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Parallel()

	t.Run("json number", func(t *testing.T) {
		id, err := ParseUserID(json.Number("123456789"))
		require.NoError(t, err)
		require.Equal(t, int64(123456789), id)
	})

	t.Run("numeric string", func(t *testing.T) {
		id, err := ParseUserID("42")
		require.NoError(t, err)
		require.Equal(t, int64(42), id)
	})

	t.Run("large id survives", func(t *testing.T) {
		// Telegram ids exceed 2^31; must not round through float64.
		id, err := ParseUserID(json.Number("5000000001"))
		require.NoError(t, err)
		require.Equal(t, int64(5000000001), id)
	})

	t.Run("rejects words", func(t *testing.T) {
		_, err := ParseUserID("abc")
		require.ErrorIs(t, err, ErrBadNumber)
	})

	t.Run("rejects fractions", func(t *testing.T) {
		_, err := ParseUserID(json.Number("1.5"))
		require.ErrorIs(t, err, ErrBadNumber)
	})

	t.Run("rejects nil and objects", func(t *testing.T) {
		_, err := ParseUserID(nil)
		require.ErrorIs(t, err, ErrBadNumber)

		_, err = ParseUserID(map[string]any{})
		require.ErrorIs(t, err, ErrBadNumber)
	})
}

func TestParseSeconds(t *testing.T) {
	t.Parallel()

	secs, err := ParseSeconds(json.Number("3600"))
	require.NoError(t, err)
	require.Equal(t, 3600, secs)

	_, err = ParseSeconds("soon")
	require.ErrorIs(t, err, ErrBadNumber)
}

func TestRequestDecodeShapes(t *testing.T) {
	t.Parallel()

	// The frontend sends user_id inconsistently; both shapes must decode and
	// parse to the same id.
	for _, body := range []string{
		`{"user_id": 7, "status": "дома"}`,
		`{"user_id": "7", "status": "дома"}`,
	} {
		var req UpdateStatusRequest
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&req))

		id, err := ParseUserID(req.UserID)
		require.NoError(t, err)
		require.Equal(t, int64(7), id)
	}
}
