// Package httphelper builds and executes single HTTP requests with a bounded
// timeout and a uniform error contract.
//
// A Client is configured through its exported fields, collects parameters
// with AppendParameter / AppendFileParameter and then performs exactly one
// request per Request or DownloadFile call.
//
// # Body Encodings
//
// GET requests carry the string parameters in the query string. POST bodies
// are written according to Client.Encoding:
//   - EncodingURLEncoded: key=value pairs, application/x-www-form-urlencoded
//   - EncodingJSON: the parameter values concatenated, application/json
//   - EncodingNone: the parameter values concatenated, no Content-Type
//   - EncodingStandard: multipart/form-data, the only encoding allowed with uploads
//
// Pending uploads force a POST even when Method is MethodGet. The override is
// logged at warn level.
//
// # Usage Example
//
//	client := httphelper.NewWithURL("http://example.com/api/login")
//	client.Method = httphelper.MethodPost
//	_ = client.AppendParameter("user", "alice")
//	_ = client.AppendParameter("password", "secret")
//
//	body, err := client.Request(ctx)
//	if err != nil {
//	    // misconfiguration, nothing was sent
//	}
//	if msg, failed := httphelper.ParseEnvelope(body); failed {
//	    log.Printf("request failed: %s", msg)
//	}
//
// # Error Handling
//
// Request failures never surface as Go errors. They come back as an error
// envelope string:
//
//	[{"FrameworkException":"network exception! error: ..."}]
//
// Timeouts and error statuses additionally publish a NoResponseEvent to every
// channel obtained from Client.Subscribe. Parameters are cleared after a
// successful request only, so a failed request can be retried unchanged.
//
// # Upload Streams
//
// Readers passed to AppendFileParameter stay owned by the caller. The client
// reads them once, sequentially, and never closes them.
//
// # Thread Safety
//
// Requests and parameter changes on one Client are serialized by an internal
// mutex. Configuration fields must not be modified while a request is running.
package httphelper
