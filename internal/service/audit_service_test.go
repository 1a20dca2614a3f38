package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
)

func TestAuditServiceRecordMasksSecrets(t *testing.T) {
	f := newFixture(t)

	entry, err := f.audit.Record(context.Background(), AuditEntry{
		Actor:      Actor{ID: 7, Role: "admin"},
		Action:     " User.Updated ",
		EntityType: "USER",
		EntityID:   "7",
		Metadata: map[string]interface{}{
			"password":     "rahasia",
			"passwordHash": "$2a$10$abc",
			"accessToken":  "jwt",
			"fullName":     "Guru",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "7", entry.ActorID)
	require.Equal(t, "ADMIN", entry.ActorRole)
	require.Equal(t, "user.updated", entry.Action)
	require.Equal(t, "user", entry.EntityType)
	require.Equal(t, "***", entry.Metadata["password"])
	require.Equal(t, "***", entry.Metadata["passwordHash"])
	require.Equal(t, "***", entry.Metadata["accessToken"])
	require.Equal(t, "Guru", entry.Metadata["fullName"])
}

func TestAuditServiceRecordRequiresAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.audit.Record(context.Background(), AuditEntry{EntityType: "user"})
	require.Error(t, err)

	entry, err := f.audit.Record(context.Background(), AuditEntry{Action: "seed", EntityType: "user"})
	require.NoError(t, err)
	require.Equal(t, "SYSTEM", entry.ActorRole)
}

func TestAuditServiceListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")
	f.seedStudent(t, "0051234568", "Budi", "X-A")
	f.seedPramuka(t)

	page, err := f.audit.List(ctx, dto.AuditLogListRequest{Page: 1, PageSize: 1, EntityType: "student"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(2), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	actorID := uint(1)
	all, err := f.audit.List(ctx, dto.AuditLogListRequest{ActorID: &actorID})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	require.Equal(t, string(models.RoleSuperAdmin), all.Items[0].ActorRole)

	created, err := f.audit.List(ctx, dto.AuditLogListRequest{Action: EventActivityCreated})
	require.NoError(t, err)
	require.Len(t, created.Items, 1)
}
