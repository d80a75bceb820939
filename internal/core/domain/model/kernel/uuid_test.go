package kernel_test

import (
	"encoding/json"
	"testing"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knownID = "550e8400-e29b-41d4-a716-446655440000"

func TestNewUUID(t *testing.T) {
	t.Run("should generate valid distinct identifiers", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id1.String())
	})
}

func TestUUIDFromString(t *testing.T) {
	t.Run("should accept canonical and alternate forms", func(t *testing.T) {
		for _, input := range []string{
			knownID,
			"{" + knownID + "}",
			"urn:uuid:" + knownID,
			"550e8400e29b41d4a716446655440000",
		} {
			id, err := kernel.UUIDFromString(input)

			require.NoError(t, err, input)
			assert.Equal(t, knownID, id.String())
		}
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		for _, input := range []string{"", "not-a-uuid", "550e8400-e29b-41d4-a716"} {
			_, err := kernel.UUIDFromString(input)

			require.Error(t, err, input)
			assert.Contains(t, err.Error(), "invalid UUID format")
		}
	})

	t.Run("should parse nil uuid but fail validation", func(t *testing.T) {
		id, err := kernel.UUIDFromString(uuid.Nil.String())

		require.NoError(t, err)
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, id.Validate())
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("should round trip through the column representation", func(t *testing.T) {
		original := kernel.NewUUID()
		raw := original.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("should reject short slices", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{0x55, 0x0e})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil uuid", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))

		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
	})
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())
	assert.NoError(t, kernel.NewUUID().Validate())
}

func TestUUID_JSON(t *testing.T) {
	type payload struct {
		OrderID kernel.UUID `json:"order_id"`
	}

	t.Run("should encode as a string", func(t *testing.T) {
		id, err := kernel.UUIDFromString(knownID)
		require.NoError(t, err)

		data, err := json.Marshal(payload{OrderID: id})

		require.NoError(t, err)
		assert.JSONEq(t, `{"order_id":"`+knownID+`"}`, string(data))
	})

	t.Run("should decode from a string", func(t *testing.T) {
		var p payload

		require.NoError(t, json.Unmarshal([]byte(`{"order_id":"`+knownID+`"}`), &p))
		assert.Equal(t, knownID, p.OrderID.String())
	})

	t.Run("should reject garbage", func(t *testing.T) {
		var p payload

		require.Error(t, json.Unmarshal([]byte(`{"order_id":"nope"}`), &p))
	})
}
