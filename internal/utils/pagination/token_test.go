package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	at := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(at, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.Equal(t, at, decodedAt)
	assert.Equal(t, int64(42), decodedID)

	// Zero values survive the round trip
	zeroAt, zeroID, err := DecodeToken(EncodeToken(time.Time{}, 0))
	assert.NoError(t, err)
	assert.True(t, zeroAt.IsZero())
	assert.Zero(t, zeroID)
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.ErrorContains(t, err, "base64 decode")

	missingSep := base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeToken(missingSep)
	assert.ErrorContains(t, err, "split")

	badTime := base64.StdEncoding.EncodeToString([]byte("notadate|7"))
	_, _, err = DecodeToken(badTime)
	assert.ErrorContains(t, err, "time parse")

	badID := base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|x"))
	_, _, err = DecodeToken(badID)
	assert.ErrorContains(t, err, "id parse")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, MaxLimit, ClampLimit(10_000))
}
