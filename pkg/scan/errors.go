package scan

import "errors"

var (
	ErrScanFailed      = errors.New("scan: scan failed")
	ErrTimeout         = errors.New("scan: timed out")
	ErrUnexpectedReply = errors.New("scan: unexpected reply from scanner")
	ErrNoScanners      = errors.New("scan: no scanners configured")
	ErrEmptySignature  = errors.New("scan: empty signature")
	ErrStreamSizeLimit = errors.New("scan: stream exceeds scanner size limit")
)
