// Package apierr defines the wire-facing error type shared by every layer.
// An Error is immutable once constructed; new errors are composed by merging
// a base template with overrides, never by mutating an existing one.
package apierr

import "fmt"

// Error is the uniform error shape rendered into response envelopes.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"type"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

// Base templates. These mirror the framework's error taxonomy: request
// shape, authentication, validation, domain and infrastructure failures all
// render through the same four fields.
var (
	ServerError = Error{Code: 500, Kind: "internal_error", Message: "An error has occurred."}
	ModelError  = Error{Code: 500, Kind: "model_error", Message: "A database error has occurred."}

	MalformedJSON    = Error{Code: 400, Kind: "malformedJSON", Message: "Request body is not valid JSON."}
	NoMethodSupplied = Error{Code: 400, Kind: "noMethodSupplied", Message: "No method was supplied with the request."}
	NoMethodFound    = Error{Code: 404, Kind: "noMethodFound", Message: "The requested method was not found."}
	NoArgsSupplied   = Error{Code: 400, Kind: "noArgsSupplied", Message: "No args were supplied with the request."}
	Malformed        = Error{Code: 400, Kind: "malformed", Message: "Request failed parameter validation."}

	NoAPIKey         = Error{Code: 401, Kind: "noApiKey", Message: "No API key was received."}
	InvalidAPIKey    = Error{Code: 401, Kind: "invalidApiKey", Message: "The supplied API key is not valid."}
	InvalidSignature = Error{Code: 401, Kind: "invalidSignature", Message: "Request signature verification failed."}
	NoSecret         = Error{Code: 401, Kind: "noSecret", Message: "No signing secret exists for the supplied API key."}

	NoSessionToken       = Error{Code: 401, Kind: "noSessionToken", Message: "No session token was received."}
	InvalidSession       = Error{Code: 401, Kind: "invalidSession", Message: "The supplied session token is not valid."}
	SessionCreationError = Error{Code: 500, Kind: "sessionCreationError", Message: "Unable to create session."}
	SessionWriteError    = Error{Code: 500, Kind: "sessionWriteError", Message: "Unable to write session."}
	SessionFlushError    = Error{Code: 500, Kind: "sessionFlushError", Message: "Unable to flush session from cache."}

	InvalidCredentials = Error{Code: 401, Kind: "invalidCredentials", Message: "Invalid username or password."}

	EmailNoSender = Error{Code: 500, Kind: "emailNoSender", Message: "No email sender is configured."}
	EmailTemplate = Error{Code: 500, Kind: "emailTemplateError", Message: "Unable to render email template."}
	EmailNotSent  = Error{Code: 500, Kind: "emailNotSent", Message: "Unable to send email."}
	SMSNotSent    = Error{Code: 500, Kind: "smsNotSent", Message: "Unable to send SMS."}
)

// Make composes a new Error from a base template and an optional detail.
// Passing a nil detail keeps the template's own detail, if any.
func Make(base Error, detail any) *Error {
	e := base
	if detail != nil {
		e.Detail = detail
	}
	return &e
}

// New builds an Error from raw parts. Most callers should prefer Make with
// one of the base templates.
func New(code int, kind, message string, detail any) *Error {
	return &Error{Code: code, Kind: kind, Message: message, Detail: detail}
}

// Normalize converts any error into a *Error suitable for the wire. Errors
// that already carry a code pass through verbatim; anything else is wrapped
// as a generic server error with the original message preserved as detail.
// Raw causes never leak past this point.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return Make(ServerError, err.Error())
}
