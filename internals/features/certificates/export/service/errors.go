package service

import (
	"errors"
	"fmt"
)

// ExportFailedMessage is shown for any export failure. Unsupported color
// functions in page styles are the usual culprit.
const ExportFailedMessage = "Failed to export the certificate. This is usually caused by unsupported color functions (such as oklch or lab) in the page styles. Please try again."

// ExportError wraps a failure at any step of the export pipeline.
type ExportError struct {
	Step string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Step, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) UserMessage() string { return ExportFailedMessage }

func exportErr(step string, err error) error {
	var ee *ExportError
	if errors.As(err, &ee) {
		return err
	}
	return &ExportError{Step: step, Err: err}
}

// ImageLoadError means the template artwork could not be fetched or decoded.
type ImageLoadError struct {
	Src string
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load image %q: %v", e.Src, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

const ImageLoadMessage = "The certificate template image could not be loaded. Please retry."
