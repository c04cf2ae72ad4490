// Package logger provides a thin factory over log/slog plus attribute
// helpers with consistent keys for the session subsystem.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithAttr(logger.Component("session")),
//	)
//	log.Info("session revoked", logger.UserID(userID), logger.Count(n))
package logger
