package bridge

import (
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/events"
)

// DeviceIDHeader identifies the simulated device whose consent state a request reads or writes.
const DeviceIDHeader = "X-Device-Id"

// Request and response bodies of the HTTP bridge protocol. Operations whose payload is already a
// domain type (ads.LoadRequest, consent.FormOptions, ...) send that type as is.
type (
	PublisherIDsBody struct {
		PublisherIDs []string `json:"publisherIds"`
	}

	DeviceIDsBody struct {
		DeviceIDs []string `json:"deviceIds"`
	}

	StatusBody struct {
		Status consent.Status `json:"status"`
	}

	GeographyBody struct {
		Geography consent.DebugGeography `json:"geography"`
	}

	TagBody struct {
		Tag bool `json:"tag"`
	}

	// ErrorBody carries a native failure message. Clients surface Message verbatim.
	ErrorBody struct {
		Message string `json:"message"`
	}
)

type wireEvent struct {
	InstanceID string          `json:"instanceId"`
	AdUnitID   string          `json:"adUnitId,omitempty"`
	RequestID  int             `json:"requestId,omitempty"`
	Format     string          `json:"format,omitempty"`
	Type       string          `json:"type"`
	Error      *ErrorBody      `json:"error,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent renders e as one line of the event stream, without the trailing newline.
func EncodeEvent(e events.Event) ([]byte, error) {
	w := wireEvent{
		InstanceID: e.InstanceID,
		AdUnitID:   e.AdUnitID,
		RequestID:  e.RequestID,
		Format:     e.Format,
		Type:       e.Type,
		Data:       e.Data,
	}
	if e.Error != nil {
		w.Error = &ErrorBody{Message: e.Error.Error()}
	}
	return json.Marshal(w)
}

// DecodeEvent parses one line of the event stream. An "error" object becomes a *errortypes.Bridge.
func DecodeEvent(line []byte) (events.Event, error) {
	var e events.Event
	var err error

	if e.InstanceID, err = jsonparser.GetString(line, "instanceId"); err != nil {
		return e, errors.Wrap(err, "event has no instanceId")
	}
	if e.Type, err = jsonparser.GetString(line, "type"); err != nil {
		return e, errors.Wrap(err, "event has no type")
	}
	if adUnitID, err := jsonparser.GetString(line, "adUnitId"); err == nil {
		e.AdUnitID = adUnitID
	}
	if format, err := jsonparser.GetString(line, "format"); err == nil {
		e.Format = format
	}
	if requestID, err := jsonparser.GetInt(line, "requestId"); err == nil {
		e.RequestID = int(requestID)
	}
	if message, err := jsonparser.GetString(line, "error", "message"); err == nil {
		e.Error = &errortypes.Bridge{Operation: e.Type, Message: message}
	}
	if data, dataType, _, err := jsonparser.Get(line, "data"); err == nil && dataType != jsonparser.Null {
		if dataType == jsonparser.String {
			// Get strips the quotes but leaves escapes untouched.
			e.Data = append(append(json.RawMessage(`"`), data...), '"')
		} else {
			e.Data = append(json.RawMessage(nil), data...)
		}
	}
	return e, nil
}
