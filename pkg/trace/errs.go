package trace

import "errors"

var (
	// ErrShortVarint indicates EOF was reached while decoding a multi-byte varint.
	ErrShortVarint = errors.New("trace: truncated varint")

	// ErrBadHeader indicates the trace stream did not start with the
	// expected "NYTProf <major> <minor>" magic line.
	ErrBadHeader = errors.New("trace: bad or missing header magic")

	// ErrUnknownTag indicates a byte was read where a record tag was
	// expected, and it did not match any known tag.
	ErrUnknownTag = errors.New("trace: unknown record tag")

	// ErrFidNotDeclared indicates a record referenced a fid with no prior
	// FID_DECL in the stream.
	ErrFidNotDeclared = errors.New("trace: fid referenced before declaration")

	// ErrWriterClosed indicates a write was attempted on a writer whose
	// Close has already been called.
	ErrWriterClosed = errors.New("trace: writer is closed")
)
