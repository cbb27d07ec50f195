// Package errors provides the application error taxonomy for the runs API.
//
// This package defines:
//   - Error, a failure tagged with a Kind and carrying its cause
//   - Constructors for every kind
//   - KindOf, which finds the kind anywhere in a wrapped chain
//   - Classify, the single projection onto the client error envelope
//
// # Kinds
//
//   - NotFound: no route matched (404)
//   - BodyMalformed: body could not be decoded (422)
//   - BodyTooLarge: body above the route cap (400)
//   - StorageDecode: a stored row could not be decoded (code 20001)
//   - Storage: any other storage failure (code 80000, detail hidden)
//   - Validation: unacceptable input value (code 20001)
//
// Application codes map to HTTP statuses by their thousands prefix, see
// StatusForCode. A new kind of failure only needs a code.
//
// # Usage
//
//	return apperrors.Validationf("unknown run target %q", raw)
//
//	if apperrors.KindOf(err) == apperrors.KindStorageDecode {
//	    // ...
//	}
package errors
