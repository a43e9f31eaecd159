package model

import "errors"

var (
	// ErrDecode marks image bytes that could not be decoded.
	ErrDecode = errors.New("failed to decode image")
	// ErrNoFaceDetected marks user input without a detectable face.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrDeviceUnavailable marks a camera or stream that could not be opened.
	ErrDeviceUnavailable = errors.New("cannot open camera")
	// ErrExternalService marks a failed chat, synthesis, publish or provisioning call.
	ErrExternalService = errors.New("external service error")
	// ErrValidation marks malformed or missing request fields.
	ErrValidation = errors.New("validation error")
	// ErrFrameSizeMismatch marks two frames that cannot be compared pixel by pixel.
	ErrFrameSizeMismatch = errors.New("frame dimensions differ")
)
