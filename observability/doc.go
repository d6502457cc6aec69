// Package observability wires OpenTelemetry tracing and metrics for data
// pipelines. One Config drives both providers:
//
//	cfg := observability.Config{
//		ServiceName: "training-input",
//		Endpoint:    "localhost:4318",
//		Insecure:    true,
//		SampleRate:  1.0,
//	}
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//
// Session tracking ties spans and metrics together for one iteration pass:
//
//	metrics, err := observability.NewMetrics(observability.Meter("training-input"))
//	sc := observability.NewSessionContext("training-input", sessionID, metrics)
//	ctx, span := sc.StartSessionSpan(ctx)
//	defer sc.EndSession(ctx, span, "completed", nil)
package observability
