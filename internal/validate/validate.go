package validate

// This package is the structural-validation collaborator: it either accepts a
// payload or returns a list of field errors. The service layer assumes its
// input already passed here and does not re-check shape.

type Kind string

const (
	KindRequired        Kind = "required"
	KindTooShort        Kind = "too_short"
	KindTooLong         Kind = "too_long"
	KindConfirmMismatch Kind = "password_confirm_not_matched"
)

type FieldError struct {
	Field string
	Kind  Kind
	Bound int
}

// Key renders the error under the configured message-key namespace,
// e.g. "server.validation.too_short".
func (e FieldError) Key(prefix string) string {
	return prefix + "." + string(e.Kind)
}

// Bounds are the username/password length limits, set once from config.
type Bounds struct {
	UsernameMin int
	UsernameMax int
	PasswordMin int
	PasswordMax int
}

func DefaultBounds() Bounds {
	return Bounds{UsernameMin: 3, UsernameMax: 16, PasswordMin: 5, PasswordMax: 64}
}

type Validator struct {
	bounds Bounds
}

func New(b Bounds) *Validator {
	return &Validator{bounds: b}
}

// Login only requires both fields to be present; whether they match anything
// is the service's concern.
func (v *Validator) Login(username, password string) []FieldError {
	var errs []FieldError
	if username == "" {
		errs = append(errs, FieldError{Field: "username", Kind: KindRequired})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Kind: KindRequired})
	}
	return errs
}

func (v *Validator) RefreshToken(token string) []FieldError {
	if token == "" {
		return []FieldError{{Field: "refreshToken", Kind: KindRequired}}
	}
	return nil
}

func (v *Validator) Register(username, password, passwordConfirm string) []FieldError {
	var errs []FieldError

	errs = append(errs, checkLength("username", username, v.bounds.UsernameMin, v.bounds.UsernameMax)...)
	errs = append(errs, checkLength("password", password, v.bounds.PasswordMin, v.bounds.PasswordMax)...)

	if passwordConfirm == "" {
		errs = append(errs, FieldError{Field: "passwordConfirm", Kind: KindRequired})
	} else if password != passwordConfirm {
		errs = append(errs, FieldError{Field: "passwordConfirm", Kind: KindConfirmMismatch})
	}

	return errs
}

func checkLength(field, value string, min, max int) []FieldError {
	switch {
	case value == "":
		return []FieldError{{Field: field, Kind: KindRequired}}
	case len(value) < min:
		return []FieldError{{Field: field, Kind: KindTooShort, Bound: min}}
	case len(value) > max:
		return []FieldError{{Field: field, Kind: KindTooLong, Bound: max}}
	}
	return nil
}
