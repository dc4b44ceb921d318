// Package classify decides whether a URL looks like part of an auth flow.
//
// The heuristic requires two signals at once: an auth keyword contained
// anywhere in the URL (auth, oauth, signin, login, sso, callback) and a
// token-style parameter (token, code, access_token) in the query or
// fragment. Either signal alone is not enough; ordinary marketing pages
// mentioning "login" or deep links carrying a "code" campaign parameter
// stay unintercepted. Only the combination trips the policy.
//
// Classification is pure and fail-open: malformed URLs are never
// auth-related and never raise. A wrong "false" means a login page opens
// like any other link; a wrong "true" would hijack a normal window, so
// the bias is deliberate.
//
// Rules extend the heuristic without replacing it:
//   - ExtraKeywords / ExtraParams: additional signals
//   - BypassHosts: glob patterns that are never intercepted
//   - ForceHosts: glob patterns where the keyword check is waived
//
// Example Usage:
//
//	c := classify.New()
//	v := c.Classify("https://idp.example.com/oauth/authorize?code=abc")
//	if v.AuthRelated {
//	    // keep the flow inside the embedded view
//	}
package classify
