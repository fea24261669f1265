package types

import (
	"bytes"
	"encoding/json"
)

// CommandError is the error descriptor a device returns for a rejected
// command.
type CommandError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CommandAck is the device's echo of a control command. It is returned as-is;
// use IsAcknowledgedSuccess to interpret it.
type CommandAck struct {
	ID          int             `json:"id"`
	Source      string          `json:"src"`
	Destination string          `json:"dst"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *CommandError   `json:"error,omitempty"`

	hasResult bool
	hasError  bool
}

type commandAckWire struct {
	ID          int             `json:"id"`
	Source      string          `json:"src"`
	Destination string          `json:"dst"`
	Result      json.RawMessage `json:"result"`
	Error       json.RawMessage `json:"error"`
}

// UnmarshalJSON records whether the result and error keys were present, not
// just whether they held non-null values.
func (a *CommandAck) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	var w commandAckWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = CommandAck{
		ID:          w.ID,
		Source:      w.Source,
		Destination: w.Destination,
		Result:      w.Result,
	}
	_, a.hasResult = keys["result"]
	_, a.hasError = keys["error"]
	if a.hasError && !isNull(w.Error) {
		var ce CommandError
		// a malformed descriptor still counts as an error
		if err := json.Unmarshal(w.Error, &ce); err == nil {
			a.Error = &ce
		} else {
			a.Error = &CommandError{Message: string(w.Error)}
		}
	}
	return nil
}

// IsAcknowledgedSuccess reports whether a device accepted a command: false if
// the acknowledgement carries an error, true only if its result is the
// boolean true.
func IsAcknowledgedSuccess(ack CommandAck) bool {
	if ack.hasError || ack.Error != nil {
		return false
	}
	if !ack.hasResult && ack.Result == nil {
		return false
	}
	var ok bool
	if err := json.Unmarshal(ack.Result, &ok); err != nil {
		return false
	}
	return ok
}

func isNull(b json.RawMessage) bool {
	return len(b) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
