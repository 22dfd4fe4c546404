package req

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beconnected/beconnected"
	"github.com/gorilla/schema"
)

// newFormDecoder constructs a *schema.Decoder ignoring form keys no field claims,
// such as a CSRF token or the submit button.
func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error returned by *schema.Decoder into the web app's errors.
// Values of the wrong type become ValidationErrors;
// anything else is a programming error in the destination struct.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	if !errors.As(err, &pkgErrs) {
		if strings.Contains(err.Error(), "interface must be a pointer to struct") {
			return fmt.Errorf("%w: %s", beconnected.ErrUnexpected, err)
		}

		return fmt.Errorf("%w: %s", beconnected.ErrBadFormat, err)
	}

	var validErrs ValidationErrors
	for _, pkgErr := range pkgErrs {
		var ce schema.ConversionError
		if !errors.As(pkgErr, &ce) {
			return fmt.Errorf("%w: %s", beconnected.ErrUnexpected, pkgErr)
		}

		validErrs = append(validErrs, ValidationError{
			Field: ce.Key,
			Got:   fmt.Sprintf("bad value at index %d", max(0, ce.Index)),
			Rule:  "must be " + ce.Type.String(),
		})
	}

	return validErrs
}
