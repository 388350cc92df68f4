// Package wire defines the JSON frames exchanged between the dashboard and the
// forecast server over a websocket connection.
package wire

import (
	"errors"

	"github.com/atomicstack/weather-dashboard/internal/weather"
)

// Path is the HTTP path of the forecast websocket endpoint.
const Path = "/forecast"

// Request asks for the forecast of one region. ID correlates the response.
type Request struct {
	ID     string         `json:"id"`
	Region weather.Region `json:"region"`
}

// Response answers exactly one Request. Exactly one of Forecast or Error is set.
type Response struct {
	ID       string               `json:"id"`
	Forecast *weather.Forecast    `json:"forecast,omitempty"`
	Error    *weather.ServerError `json:"error,omitempty"`
}

// ErrMalformed is returned when a frame carries neither or both payloads.
var ErrMalformed = errors.New("malformed response frame")

// Validate checks that a response frame is well formed.
func (r Response) Validate() error {
	if r.ID == "" {
		return ErrMalformed
	}
	if (r.Forecast == nil) == (r.Error == nil) {
		return ErrMalformed
	}
	return nil
}

// Success builds a forecast response for the request id.
func Success(id string, f weather.Forecast) Response {
	return Response{ID: id, Forecast: &f}
}

// Failure builds an error response for the request id.
func Failure(id string, err *weather.ServerError) Response {
	return Response{ID: id, Error: err}
}
