package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAcknowledgedSuccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"ResultTrue", `{"id": 20520236, "src": "1p7k_500006", "dst": "HASS", "result": true}`, true},
		{"ResultFalse", `{"id": 20520236, "src": "1p7k_500006", "dst": "HASS", "result": false}`, false},
		{"Error", `{"id": 66703784, "src": "1p7k_500006", "dst": "HASS", "error": {"code": -6, "message": "Error uknown key."}}`, false},
		{"ErrorAndResult", `{"result": true, "error": {"code": 1, "message": "x"}}`, false},
		{"NullError", `{"result": true, "error": null}`, false},
		{"Empty", `{}`, false},
		{"ResultNotBool", `{"result": "true"}`, false},
		{"ResultNull", `{"result": null}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ack CommandAck
			require.NoError(t, json.Unmarshal([]byte(tt.body), &ack))
			assert.Equal(t, tt.want, IsAcknowledgedSuccess(ack))
		})
	}
}

func TestCommandAckUnmarshal(t *testing.T) {
	var ack CommandAck
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12345678, "src": "3p22k_500123", "dst": "GO", "error": {"code": -6, "message": "Error uknown key."}}`), &ack))
	assert.Equal(t, 12345678, ack.ID)
	assert.Equal(t, "3p22k_500123", ack.Source)
	assert.Equal(t, "GO", ack.Destination)
	require.NotNil(t, ack.Error)
	assert.Equal(t, -6, ack.Error.Code)
	assert.Equal(t, "Error uknown key.", ack.Error.Message)

	var odd CommandAck
	require.NoError(t, json.Unmarshal([]byte(`{"error": "boom"}`), &odd))
	require.NotNil(t, odd.Error)
	assert.Equal(t, `"boom"`, odd.Error.Message)

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &odd))
}

func TestFaultSetAny(t *testing.T) {
	assert.False(t, FaultSet{}.Any())
	assert.True(t, FaultSet{ContactorFailure: true}.Any())
}
