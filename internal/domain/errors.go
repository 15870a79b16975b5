package domain

import "errors"

// ErrNoWorkersAvailable is returned by a distribution pass attempted with
// pending documents but an empty roster. It is the only pass-level error;
// per-document failures are counted, never propagated.
var ErrNoWorkersAvailable = errors.New("no workers available")

// ErrInvalidContent is returned when a document's content cannot be analyzed,
// for example an empty file.
var ErrInvalidContent = errors.New("invalid document content")

// ErrFileNotFound is returned by path resolution when a document exists at
// neither the requested path nor the fallback location.
var ErrFileNotFound = errors.New("file not found")
