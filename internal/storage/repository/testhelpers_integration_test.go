//go:build integration

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/edilconnect/platform/internal/migrations"
	"github.com/edilconnect/platform/internal/models"
)

// TestDataFactory seeds rows directly, bypassing the storage methods under
// test.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser inserts a verified user and returns the generated UID.
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, role string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, role, is_admin, is_verified)
		VALUES ($1, $2, 'hashedpassword', $3, $4, true)
		RETURNING uid`,
		name, email, role, role == models.RoleAdmin).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateSessionToken inserts a token pair into the user's session set.
func (f *TestDataFactory) CreateSessionToken(t *testing.T, userUID, accessToken, refreshToken string) {
	_, err := f.storage.DB.Exec(`INSERT INTO session_tokens (user_uid, access_token, refresh_token)
		VALUES ($1, $2, $3)`,
		userUID, accessToken, refreshToken)
	require.NoError(t, err)
}

// CreateVerificationDocument inserts one credential document entry.
func (f *TestDataFactory) CreateVerificationDocument(t *testing.T, userUID, docType, fileKey string, verified bool) {
	_, err := f.storage.DB.Exec(`INSERT INTO verification_documents (user_uid, doc_type, file_key, verified)
		VALUES ($1, $2, $3, $4)`,
		userUID, docType, fileKey, verified)
	require.NoError(t, err)
}

// CreateSubscription inserts a subscription row for the user.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userUID, status, plan string, endDate time.Time) {
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions
		(user_uid, status, plan, amount, currency, start_date, end_date, provider_subscription_id)
		VALUES ($1, $2, $3, 2999, 'EUR', now(), $4, 'sub_'||$1)`,
		userUID, status, plan, endDate)
	require.NoError(t, err)
}

// CreateProject inserts a project and returns the generated id.
func (f *TestDataFactory) CreateProject(t *testing.T, ownerUID, name string) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO projects (name, owner_uid)
		VALUES ($1, $2)
		RETURNING id`,
		name, ownerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateCollaborator links a user to a project.
func (f *TestDataFactory) CreateCollaborator(t *testing.T, projectID, userUID string) {
	_, err := f.storage.DB.Exec(`INSERT INTO project_collaborators (project_id, user_uid)
		VALUES ($1, $2)`,
		projectID, userUID)
	require.NoError(t, err)
}

// CreateProjectDocument inserts a document metadata row and returns its id.
func (f *TestDataFactory) CreateProjectDocument(t *testing.T, projectID, uploadedBy, fileKey string) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO documents
		(project_id, name, original_name, file_key, size, mime_type, uploaded_by)
		VALUES ($1, 'capitolato.pdf', 'capitolato.pdf', $2, 1024, 'application/pdf', $3)
		RETURNING id`,
		projectID, fileKey, uploadedBy).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification asserts database state after a storage call.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifySessionCount checks how many session rows the user holds.
func (v *TestVerification) VerifySessionCount(t *testing.T, userUID string, expected int) {
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM session_tokens WHERE user_uid = $1`, userUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// VerifyVerificationStatus checks the aggregate credential status on the
// user row.
func (v *TestVerification) VerifyVerificationStatus(t *testing.T, userUID, expected string) {
	var status string
	err := v.storage.DB.QueryRow(`SELECT verification_status FROM users WHERE uid = $1`, userUID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expected, status)
}

// VerifySubscriptionActive checks the mirrored activation flag on the user
// row.
func (v *TestVerification) VerifySubscriptionActive(t *testing.T, userUID string, expected bool) {
	var active bool
	err := v.storage.DB.QueryRow(`SELECT subscription_active FROM users WHERE uid = $1`, userUID).Scan(&active)
	require.NoError(t, err)
	require.Equal(t, expected, active)
}

// VerifyPaymentCount checks how many payment-history rows the user holds.
func (v *TestVerification) VerifyPaymentCount(t *testing.T, userUID string, expected int) {
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM payments WHERE user_uid = $1`, userUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// VerifyProjectDeleted checks the project row and its dependents are gone.
func (v *TestVerification) VerifyProjectDeleted(t *testing.T, projectID string) {
	for _, table := range []string{"projects", "project_collaborators", "tasks", "documents"} {
		var count int
		column := "id"
		if table == "project_collaborators" || table == "tasks" || table == "documents" {
			column = "project_id"
		}
		err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE `+column+` = $1`, projectID).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 0, count, "leftover rows in %s", table)
	}
}

// setupTestDatabase starts a throwaway PostgreSQL container and migrates the
// schema into it.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("edilconnect_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("5432/tcp")),
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	err = migrations.Run(storage.DB, filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		_ = container.Terminate(ctx)
	}

	return storage, cleanup
}
