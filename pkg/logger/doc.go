// Package logger builds *slog.Logger instances for the two-factor service.
//
// New takes functional options for level, format, output and static
// attributes. WithEnvironment picks sensible defaults for development,
// staging and production. Context extractors registered through
// WithContextExtractors or WithContextValue copy request-scoped values
// (request ID, attempt ID) into every record logged with that context.
//
// The attribute helpers in attr.go keep key names consistent:
//
//	log.InfoContext(ctx, "second factor passed",
//	    logger.Account(account),
//	    logger.AttemptID(attempt.ID),
//	    logger.Transition("awaiting_code", "passed"),
//	)
package logger
