package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/eshwanthkartitr/sih-draft/internal/download"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/upload"
)

// Message turns an error into the text shown to the user. Every failure
// ends up here instead of terminating the program.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var uploadStatus *upload.StatusError
	var fetchStatus *loader.StatusError
	switch {
	case errors.Is(err, upload.ErrInvalidFileType):
		return "Please upload a valid image file."
	case errors.Is(err, download.ErrMissingResource):
		return "The model is not ready yet. Wait for processing to finish."
	case errors.Is(err, upload.ErrBusy):
		return "An upload is already being processed."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	case errors.As(err, &uploadStatus):
		return fmt.Sprintf("Upload failed: the server answered %d.", uploadStatus.Code)
	case errors.As(err, &fetchStatus):
		return fmt.Sprintf("Could not fetch the model: the server answered %d.", fetchStatus.Code)
	case errors.Is(err, loader.ErrParse):
		return "The model files could not be read."
	case errors.Is(err, loader.ErrTransport):
		return "Could not reach the server. Check the connection and try again."
	}
	return "Something went wrong: " + err.Error()
}
