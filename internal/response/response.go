package response

// JSON envelope shared by handlers and middleware: a success carries "data",
// a failure carries "errors" with message keys the client translates.

type Error struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

type Body struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

func Data(v any) Body {
	return Body{Data: v}
}

func Errors(errs ...Error) Body {
	return Body{Errors: errs}
}

// ServerError is the generic degraded outcome; it deliberately carries no
// detail from the underlying failure.
func ServerError() Body {
	return Errors(Error{Key: "server.500"})
}

// LoginError mirrors the uniform login failure: the same key is reported for
// both fields so the response never says which one was wrong.
func LoginError(prefix string) Body {
	return Errors(
		Error{Key: prefix + ".invalid_login", Name: "username"},
		Error{Key: prefix + ".invalid_login", Name: "password"},
	)
}

func AccessTokenRequired(prefix string) Body {
	return Errors(Error{Key: prefix + ".access_token_required"})
}

func AccessTokenInvalid(prefix string) Body {
	return Errors(Error{Key: prefix + ".access_token_invalid"})
}

func NoPermission(prefix string) Body {
	return Errors(Error{Key: prefix + ".no_permission"})
}

func RefreshTokenInvalid(prefix string) Body {
	return Errors(Error{Key: prefix + ".refresh_token_invalid"})
}

func UsernameAlreadyExist(prefix string) Body {
	return Errors(Error{Key: prefix + ".username_already_exist", Name: "username"})
}
