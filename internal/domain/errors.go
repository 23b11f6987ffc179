package domain

import "errors"

// User-correctable input errors.
var (
	// ErrInvalidVideoRef indicates the message looked like a video link
	// but no video ID could be extracted.
	ErrInvalidVideoRef = errors.New("invalid video reference")

	// ErrNoActiveVideo indicates a question arrived before any video was loaded.
	ErrNoActiveVideo = errors.New("no active video in session")
)

// Transcript provider failures, reported to the user with the specific reason.
var (
	ErrNoCaptions       = errors.New("no captions available")
	ErrVideoUnavailable = errors.New("video unavailable")
	ErrAgeRestricted    = errors.New("video is age restricted")
)

// Internal retrieval errors. Not user-correctable: callers log them and
// report a generic failure instead of leaking details.
var (
	ErrEmptyTranscript = errors.New("transcript has no segments")
	ErrEmptyText       = errors.New("text is empty")
	ErrIndexNotBuilt   = errors.New("vector index not built")
	ErrInternal        = errors.New("internal retrieval error")
)

// Generation and transport-level failures.
var (
	// ErrRateLimited is retryable: the provider or model is at capacity.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout is retryable: an external call exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrModel covers any other generation failure.
	ErrModel = errors.New("model error")
)

// ErrNotCovered is not a failure: it is the designed response path when
// retrieval confidence is below threshold or the model reports the answer
// is absent from the transcript.
var ErrNotCovered = errors.New("topic not covered in the video")
