package snapshot

import "errors"

var (
	// ErrInvalidMagic reports data that does not open with the image magic.
	ErrInvalidMagic = errors.New("snapshot: invalid image magic")

	// ErrUnsupportedVersion reports an image written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")

	// ErrTruncated reports an image that ends inside a record.
	ErrTruncated = errors.New("snapshot: truncated image")

	// ErrBadRecord reports a structurally valid read that decodes to an
	// impossible object: unknown kinds, out-of-range lengths, references to
	// objects the image does not contain.
	ErrBadRecord = errors.New("snapshot: malformed record")

	// ErrDanglingReference reports a heap value word that references an
	// object the serializing walk never produced.
	ErrDanglingReference = errors.New("snapshot: reference to an object outside the image")

	// ErrBadManifest reports a manifest that parses as TOML but does not
	// describe a buildable program.
	ErrBadManifest = errors.New("snapshot: invalid manifest")
)
