package order_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Names(t *testing.T) {
	t.Run("should round trip every status through its wire name", func(t *testing.T) {
		for _, s := range order.AllStatuses() {
			t.Run(s.String(), func(t *testing.T) {
				parsed, err := order.ParseStatus(s.String())

				require.NoError(t, err)
				assert.Equal(t, s, parsed)
				require.NoError(t, s.Validate())
			})
		}
	})

	t.Run("should cover thirteen states", func(t *testing.T) {
		assert.Len(t, order.AllStatuses(), 13)
		assert.Equal(t, 0, int(order.Unknown))
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(14), order.Status(100)} {
		t.Run(fmt.Sprintf("should reject %d", int(s)), func(t *testing.T) {
			err := s.Validate()

			require.ErrorIs(t, err, order.ErrInvalidState)
			assert.Equal(t, "UNKNOWN", s.String())
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("should reject unknown names as invalid state", func(t *testing.T) {
		for _, name := range []string{"", "intake", "SHIPPED", "Unknown"} {
			_, err := order.ParseStatus(name)

			require.ErrorIs(t, err, order.ErrInvalidState, name)

			var stateErr *order.InvalidStateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, name, stateErr.Value)
		}
	})
}

func TestStatus_HappyPath(t *testing.T) {
	path := order.HappyPath()

	require.Len(t, path, 11)
	assert.Equal(t, order.Intake, path[0])
	assert.Equal(t, order.Closed, path[len(path)-1])
	assert.NotContains(t, path, order.OnHold)
	assert.NotContains(t, path, order.Cancelled)
}

func TestStatus_JSON(t *testing.T) {
	t.Run("should encode wire names", func(t *testing.T) {
		data, err := json.Marshal(map[string]order.Status{"status": order.ReadyForDelivery})

		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"READY_FOR_DELIVERY"}`, string(data))
	})

	t.Run("should decode wire names", func(t *testing.T) {
		var v struct {
			Status order.Status `json:"status"`
		}

		require.NoError(t, json.Unmarshal([]byte(`{"status":"QC"}`), &v))
		assert.Equal(t, order.QC, v.Status)
	})

	t.Run("should refuse to encode unknown", func(t *testing.T) {
		_, err := json.Marshal(map[string]order.Status{"status": order.Unknown})

		require.Error(t, err)
	})
}
