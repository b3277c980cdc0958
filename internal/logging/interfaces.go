// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Debugf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Error(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Debug(args ...interface{})
	Fatal(args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Security() SecurityLoggerInterface
	Sync() error
}

// SecurityLoggerInterface emits OWASP vocabulary security events.
type SecurityLoggerInterface interface {
	AuthzFailure(userID string, resource string)
	AuthzFailureInsufficientRoles(userID string, resource string, roles []string)
	UserCreated(actorID string, subjectID string)
	UserUpdated(actorID string, subjectID string, change string)
	UserDeleted(actorID string, subjectID string)
	PrivilegeGranted(actorID string, subjectID string, role string)
	PrivilegeRevoked(actorID string, subjectID string, role string)
	SystemStartup()
	SystemShutdown()
}
