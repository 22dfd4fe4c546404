package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beconnected/beconnected"
	"github.com/gorilla/schema"
)

// maxFormBytes bounds how much of a request body ParseRequest reads.
const maxFormBytes = 1 << 20

// A Parser decodes request payloads into structs and validates them.
//
// A Parser is safe for concurrent use.
type Parser struct {
	dec *schema.Decoder
	validator
}

// NewParser constructs a *Parser.
func NewParser() *Parser {
	return &Parser{dec: newFormDecoder(), validator: newValidator()}
}

// ParseRequest decodes into structPtr the payload of r,
// picking JSON or form decoding by the request's Content-Type.
// Cf. ParseBody and ParseForm.
func (p *Parser) ParseRequest(w http.ResponseWriter, r *http.Request, structPtr any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return p.ParseBody(r.Body, structPtr)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: failed parsing form: %s", beconnected.ErrBadFormat, err)
	}

	return p.ParseForm(r.PostForm, structPtr)
}

// ParseBody decodes into a pointer to a struct the JSON data in body.
// If successful, ParseBody runs validation against the contents,
// returning an ErrNotValid if the data fails validation rules.
//
// ParseBody reads the entire body and it can't be read from again.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	var ourFault *json.InvalidUnmarshalError
	err := json.NewDecoder(body).Decode(structPtr)
	if errors.As(err, &ourFault) {
		return fmt.Errorf("%w: ParseBody called with non-pointer: %s", beconnected.ErrUnexpected, err)
	}

	if err != nil {
		return fmt.Errorf("%w: failed decoding request body: %s", beconnected.ErrBadFormat, err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("%T failed validation: %w", structPtr, err)
	}

	return nil
}

// ParseForm decodes into a pointer to a struct the url-encoded form values,
// matching keys with "schema" struct tags.
// If successful, ParseForm runs validation against the contents,
// returning an ErrNotValid if the data fails validation rules.
func (p *Parser) ParseForm(form url.Values, structPtr any) error {
	if err := p.dec.Decode(structPtr, form); err != nil {
		return fmt.Errorf("failed decoding form: %w", translateDecoderError(err))
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("%T failed validation: %w", structPtr, err)
	}

	return nil
}
