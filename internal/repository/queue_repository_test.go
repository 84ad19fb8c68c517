package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/motogarage/backend/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.QueueEntry{},
		&models.QueueStatus{},
		&models.Appointment{},
		&models.WorkOrder{},
		&models.Technician{},
		&models.Motorcycle{},
	))
	return db
}

func TestQueueEntrySaveIsAnUpsert(t *testing.T) {
	repo := NewQueueEntryRepository(testDB(t))
	ctx := context.Background()

	entry := &models.QueueEntry{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		ServiceType:      models.ServiceTypeAppointment,
		Status:           models.EntryStatusWaiting,
		Position:         1,
		VerificationCode: "1234",
		ExpiresAt:        time.Now().Add(15 * time.Minute),
	}
	require.NoError(t, repo.SaveEntry(ctx, entry))

	entry.Status = models.EntryStatusCalled
	entry.Position = 0
	require.NoError(t, repo.SaveEntry(ctx, entry))

	got, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryStatusCalled, got.Status)
	assert.Equal(t, 0, got.Position)
}

func TestListActiveExcludesTerminalEntries(t *testing.T) {
	repo := NewQueueEntryRepository(testDB(t))
	ctx := context.Background()

	statuses := []models.EntryStatus{
		models.EntryStatusWaiting,
		models.EntryStatusCalled,
		models.EntryStatusServed,
		models.EntryStatusCancelled,
		models.EntryStatusNoShow,
	}
	for i, st := range statuses {
		require.NoError(t, repo.SaveEntry(ctx, &models.QueueEntry{
			ID:               uuid.New(),
			CustomerID:       uuid.New(),
			Status:           st,
			VerificationCode: "000" + string(rune('0'+i)),
			CreatedAt:        time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	history, err := repo.ListHistory(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestQueueStatusSingletonRoundTrip(t *testing.T) {
	repo := NewQueueStatusRepository(testDB(t))
	ctx := context.Background()

	missing, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing, "no status saved yet")

	status := &models.QueueStatus{IsOpen: true, CurrentCount: 3, LastUpdated: time.Now()}
	status.SetHours(models.WeekHours{"monday": {Open: "08:00", Close: "17:00", Enabled: true}})
	require.NoError(t, repo.Save(ctx, status))

	status.IsOpen = false
	require.NoError(t, repo.Save(ctx, status), "second save updates the same row")

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsOpen)
	assert.Equal(t, 3, got.CurrentCount)
	assert.Equal(t, "08:00", got.Hours()["monday"].Open)
}

func TestWorkOrderFindByQueueEntry(t *testing.T) {
	db := testDB(t)
	repo := NewWorkOrderRepository(db)
	ctx := context.Background()

	entryID := uuid.New()
	order := &models.WorkOrder{
		QueueEntryID: &entryID,
		CustomerID:   uuid.New(),
		Status:       models.WorkOrderInProgress,
	}
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByQueueEntry(ctx, entryID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)

	none, err := repo.FindByQueueEntry(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMotorcycleRegisterAndList(t *testing.T) {
	repo := NewMotorcycleRepository(testDB(t))
	ctx := context.Background()
	customer := uuid.New()

	m := &models.Motorcycle{CustomerID: customer, Plate: "B 1234 XYZ"}
	require.NoError(t, repo.Register(ctx, m))
	assert.NotEqual(t, uuid.Nil, m.ID)

	owned, err := repo.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "B 1234 XYZ", owned[0].Plate)

	found, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	none, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}
