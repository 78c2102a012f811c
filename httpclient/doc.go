// Package httpclient is the HTTP client shared by the model sidecars
// (speech recognition and speaker embedding).
//
// It uploads multipart forms or fetches JSON relative to a base URL and
// turns every failure into an *errors.AppError: transport failures become
// CONNECTION_FAILED or TIMEOUT, 429/503 become SERVICE_UNAVAILABLE, other
// 4xx become INVALID_INPUT and remaining statuses EXTERNAL_SERVICE_ERROR.
// Cancellation of the caller's context is returned unchanged.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8388",
//	    Service: "whisper sidecar",
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//
//	var out whisperResponse
//	err = client.PostForm(ctx, "/transcribe", &httpclient.Form{
//	    Fields: map[string]string{"model": "base", "task": "transcribe"},
//	    Files:  []httpclient.File{{Field: "file", Name: "meeting.wav", Data: wav}},
//	}, &out)
package httpclient
