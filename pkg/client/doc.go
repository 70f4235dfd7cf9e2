// Package client talks to the peekguard HTTP API on behalf of a front end. It
// keeps the session cookie in a cookie jar, so a Client is one logged-in user.
//
//	c, _ := client.New("http://localhost:3000")
//	res, err := c.Login(ctx, "student", password)
//	events, err := c.Logs(ctx)
//	if errors.Is(err, client.ErrUnauthenticated) {
//		// back to the login screen
//	}
//
// Emitter sends security events fire-and-forget: failures are logged at debug
// level and never reach the caller.
package client
