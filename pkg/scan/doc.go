// Package scan provides the content-scanning capability used to vet uploaded
// files before they are accepted.
//
// A Scanner reads a stream and returns a Result with a Clean or Infected
// verdict. Two implementations are provided:
//
//   - SignatureScanner matches a set of byte signatures (the EICAR test string
//     by default) and needs no external service.
//   - Clamd talks to a ClamAV daemon using the INSTREAM protocol over TCP or a
//     unix socket.
//
// Chain runs several scanners in order and reports the first detection.
// Scanners honor the context deadline; callers that need a hard bound wrap the
// call with context.WithTimeout. A deadline that expires is reported as an
// error wrapping ErrTimeout, never as a Clean verdict.
package scan
