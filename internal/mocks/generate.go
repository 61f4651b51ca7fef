// Package mocks provides mock implementations for testing the mesh console.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	verifier := mocks.NewMockCredentialVerifier(ctrl)
//	verifier.EXPECT().Verify(gomock.Any(), "admin@gmail.com", "admin123").Return(principal, nil)
package mocks

// Generate mock for CredentialVerifier interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_verifier_mock.go github.com/safemesh/mesh-console/internal/ports CredentialVerifier

// Generate mock for SessionSlot interface from internal/ports package.
// This creates MockSessionSlot with methods: Load, Save, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_slot_mock.go github.com/safemesh/mesh-console/internal/ports SessionSlot

// Generate mock for AuditSink interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_sink_mock.go github.com/safemesh/mesh-console/internal/core AuditSink

// Generate mock for AuditLogRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_log_repository_mock.go github.com/safemesh/mesh-console/internal/core AuditLogRepository
