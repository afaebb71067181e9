package storeerr

import (
	"errors"

	"github.com/deppfellow/listings-api/internal/errs"
)

// HandleError converts a store failure into the error returned to the
// client.
//
// An *errs.HTTPError is returned unchanged. Anything else becomes a 500 with
// message and the driver's text as detail, tagged with its category.
func HandleError(message string, err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	storeErr := errs.NewStoreError(message, err)
	storeErr.Code = string(ErrCode(err))
	return storeErr
}
