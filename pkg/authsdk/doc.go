/*
Package authsdk provides a client SDK for the MiniPro authentication service.

# Overview

The service authenticates users by email and password. New accounts must
confirm their address with a six digit code mailed to them before they can
log in. A successful login sets an HttpOnly session cookie; SDKClient keeps
it in a cookie jar so later calls are authenticated automatically.

	client := authsdk.NewSDKClient("http://localhost:3000")

	// Register and confirm the address
	_, err := client.Signup(ctx, "alice@example.com", "correct-horse")
	_, err = client.VerifyEmail(ctx, "alice@example.com", code)

	// Open a session and use it
	user, err := client.Login(ctx, "alice@example.com", "correct-horse")
	me, err := client.Me(ctx)
	page, err := client.Dashboard(ctx)

	// End the session
	err = client.Logout(ctx)

# Errors

Every response with an unexpected status code is returned as an *APIError
holding the status code and the service's message. Validation failures also
carry per-field Details. Redirects are not followed; Dashboard without a
session returns an *APIError with StatusCode 302 and the login Location.

	if authsdk.IsStatus(err, http.StatusUnauthorized) {
		// wrong credentials, wrong code or unverified account
	}

# Shared Types

The request and response structs in this package are also used by the
service's HTTP handlers, so the wire format is defined in one place.
*/
package authsdk
