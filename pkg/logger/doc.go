// Package logger builds *slog.Logger instances with per-environment defaults
// and request-scoped attributes pulled from context.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "authflow"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session created", logger.Role("customer"), logger.Email(email))
//
// The attribute helpers in attr.go keep key names consistent. Helpers taking
// optional values return an empty slog.Attr for nil input, which slog drops.
package logger
