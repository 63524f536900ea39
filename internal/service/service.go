// Package service orchestrates the gateway's pages: it calls the backend for the
// current tab, reshapes the answers into view models and publishes live events.
package service

import (
	"errors"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Tab is everything a request knows about the browser tab it came from
type Tab struct {
	ID      string
	Session *session.Session
	Backend *client.Backend
}

// Publisher receives live events; *websocket.Hub satisfies it
type Publisher interface {
	Publish(ev ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// ValidationError lists every problem found in a submitted form or upload
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// imageMessage turns an image normalization error into text for the form
func imageMessage(err error) string {
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return "Image size should be less than 5MB"
	case errors.Is(err, imaging.ErrNotImage):
		return "Please select a valid image file"
	default:
		return "Failed to process image. Please try again."
	}
}
