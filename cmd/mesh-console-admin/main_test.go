package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/safemesh/mesh-console/internal/domain/model"
	"github.com/safemesh/mesh-console/internal/mocks"
)

func TestParseAuditExportFlags(t *testing.T) {
	opts, err := parseAuditExportFlags([]string{"-filter", " login ", "-limit", "5"})
	require.NoError(t, err)
	assert.Equal(t, "login", opts.Filter)
	assert.Equal(t, 5, opts.Limit)

	_, err = parseAuditExportFlags([]string{"-limit", "-1"})
	require.Error(t, err)
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags([]string{"-timeout", "0s"})
	require.Error(t, err)
}

func TestExportAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditLogRepository(ctrl)

	entry := model.AuditLogEntry{
		ID:        "1705327200000",
		Timestamp: time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		Action:    model.AuditActionLogin,
		User:      "Admin User",
		Details:   "Successful administrator login",
	}
	repo.EXPECT().
		List(gomock.Any(), model.AuditListOptions{Filter: "login", Limit: 10}).
		Return([]model.AuditLogEntry{entry}, nil)

	var buf bytes.Buffer
	require.NoError(t, exportAudit(context.Background(), repo, auditExportOptions{Filter: "login", Limit: 10}, &buf))

	var got []model.AuditLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
}

func TestExportAudit_EmptyTrail(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditLogRepository(ctrl)
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, exportAudit(context.Background(), repo, auditExportOptions{}, &buf))
	assert.JSONEq(t, "[]", buf.String())
}

func TestExportAudit_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditLogRepository(ctrl)
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	err := exportAudit(context.Background(), repo, auditExportOptions{}, &bytes.Buffer{})
	require.ErrorContains(t, err, "db down")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	assert.Contains(t, buf.String(), "audit-export")
	assert.Contains(t, buf.String(), "migrate")
}
