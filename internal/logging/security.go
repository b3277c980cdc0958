// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	levelInfo     = "INFO"
	levelWarn     = "WARN"
	levelCritical = "CRITICAL"

	appID = "erp-access-service"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

// SecurityLogger writes events following the OWASP logging vocabulary
// https://cheatsheetseries.owasp.org/cheatsheets/Logging_Vocabulary_Cheat_Sheet.html
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) log(level, event, description string, fields ...zap.Field) {
	fields = append(
		fields,
		zap.String("type", "security"),
		zap.String("appid", appID),
		zap.String("event", event),
		zap.String("level", level),
	)

	switch level {
	case levelCritical:
		s.l.Error(description, fields...)
	case levelWarn:
		s.l.Warn(description, fields...)
	default:
		s.l.Info(description, fields...)
	}
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.log(
		levelCritical,
		fmt.Sprintf("authz_fail:%s,%s", userID, resource),
		fmt.Sprintf("User %s attempted to access %s without entitlement", userID, resource),
	)
}

func (s *SecurityLogger) AuthzFailureInsufficientRoles(userID, resource string, roles []string) {
	s.log(
		levelCritical,
		fmt.Sprintf("authz_fail:%s,%s", userID, resource),
		fmt.Sprintf("User %s attempted to access %s, holding roles [%s]", userID, resource, strings.Join(roles, ",")),
		zap.Strings("roles", roles),
	)
}

func (s *SecurityLogger) UserCreated(actorID, subjectID string) {
	s.log(
		levelWarn,
		fmt.Sprintf("user_created:%s,%s", actorID, subjectID),
		fmt.Sprintf("User %s has created %s", actorID, subjectID),
	)
}

func (s *SecurityLogger) UserUpdated(actorID, subjectID, change string) {
	s.log(
		levelWarn,
		fmt.Sprintf("user_updated:%s,%s,%s", actorID, subjectID, change),
		fmt.Sprintf("User %s has updated %s: %s", actorID, subjectID, change),
	)
}

func (s *SecurityLogger) UserDeleted(actorID, subjectID string) {
	s.log(
		levelWarn,
		fmt.Sprintf("user_deleted:%s,%s", actorID, subjectID),
		fmt.Sprintf("User %s has deleted %s", actorID, subjectID),
	)
}

func (s *SecurityLogger) PrivilegeGranted(actorID, subjectID, role string) {
	s.log(
		levelWarn,
		fmt.Sprintf("authz_admin:%s,%s,grant:%s", actorID, subjectID, role),
		fmt.Sprintf("User %s granted role %s to %s", actorID, role, subjectID),
	)
}

func (s *SecurityLogger) PrivilegeRevoked(actorID, subjectID, role string) {
	s.log(
		levelWarn,
		fmt.Sprintf("authz_admin:%s,%s,revoke:%s", actorID, subjectID, role),
		fmt.Sprintf("User %s revoked role %s from %s", actorID, role, subjectID),
	)
}

func (s *SecurityLogger) SystemStartup() {
	s.log(levelWarn, "sys_startup", "System started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.log(levelWarn, "sys_shutdown", "System shut down")
}

func NewSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
