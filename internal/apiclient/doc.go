/*
Package apiclient talks to the EcoWork REST backend over fasthttp and keeps
the client usable when the backend is gone.

# Fallback

Every request goes through Client.Do. When the backend cannot be reached,
answers 404, or returns a body that is not JSON, Do asks the configured
Fallback for a synthetic answer keyed by method and path:

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithFallback(fallback.New()),
		apiclient.WithLogger(log),
	)

	res, err := client.Do(ctx, "GET", "/usuarios", nil)
	if res.Degraded() {
		// served from the demo dataset or empty
	}

Paths the fallback does not know yield an empty Result. A 401 or 403 from the
backend is never masked: it surfaces as domain.ErrInvalidCredentials.

# Typed operations

Login, RegisterCompany, History, Benefits and the other typed operations
decode the body and validate it with go-playground/validator. A backend body
that fails validation is treated like a malformed one and replaced by the
fallback answer. Each operation reports the Source that produced its value.

# Health

CheckHealth races two requests against a fixed timer and returns false on
timeout. It never returns an error.
*/
package apiclient
