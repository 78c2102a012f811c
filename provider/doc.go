// Package provider is a small generic framework for swappable model
// backends.
//
// A backend implements Provider (Name, IsAvailable). Request/response
// backends such as the speech recognition and speaker embedding sidecars
// implement RequestResponse[I, O] and can be decorated with middleware:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics, "embed"),
//	    provider.WithTracing[In, Out]("embedding"),
//	    provider.WithRetry[In, Out](retryCfg),
//	)(backend)
//
// Registry holds named factories. Manager instantiates them, runs Init for
// Initializable providers and picks one per call through a Selector.
//
//	mgr := provider.NewManager(nil, provider.Prefer[transcription.Provider]("whisper"))
//	mgr.Register("whisper", whisper.Factory())
//	asr, err := mgr.Initialize(ctx, "whisper", cfg)
//	p, err := mgr.Get(ctx)
package provider
