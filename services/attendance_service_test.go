package services

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionattend/attendancebackend/database"
	"github.com/visionattend/attendancebackend/repository"
)

func newTestAttendanceService(t *testing.T, cooldown time.Duration) (*AttendanceService, *repository.AttendanceRepository) {
	t.Helper()
	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repo := repository.NewAttendanceRepository(db)
	return NewAttendanceService(repo, cooldown), repo
}

func TestAttendanceServiceCooldown(t *testing.T) {
	svc, _ := newTestAttendanceService(t, 30*time.Second)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	recorded, err := svc.Record("alice")
	require.NoError(t, err)
	assert.True(t, recorded, "first sighting is recorded")

	clock = base.Add(10 * time.Second)
	recorded, err = svc.Record("alice")
	require.NoError(t, err)
	assert.False(t, recorded, "re-sighting within the cooldown is suppressed")

	clock = base.Add(31 * time.Second)
	recorded, err = svc.Record("alice")
	require.NoError(t, err)
	assert.True(t, recorded, "re-sighting after the cooldown is recorded again")

	records, err := svc.Query("alice", "")
	require.NoError(t, err)
	assert.Len(t, records, 2, "the suppressed sighting must not produce a row")
}

func TestAttendanceServiceConcurrentRecordSingleRow(t *testing.T) {
	svc, _ := newTestAttendanceService(t, 30*time.Second)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	const callers = 16
	var wg sync.WaitGroup
	var written atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorded, err := svc.Record("alice")
			assert.NoError(t, err)
			if recorded {
				written.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), written.Load(), "only one caller may win the cooldown window")

	records, err := svc.Query("alice", "")
	require.NoError(t, err)
	assert.Len(t, records, 1, "concurrent sightings inside the cooldown must produce a single row")
}

func TestAttendanceServiceCooldownIsPerName(t *testing.T) {
	svc, _ := newTestAttendanceService(t, 30*time.Second)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	recorded, err := svc.Record("alice")
	require.NoError(t, err)
	require.True(t, recorded)

	recorded, err = svc.Record("bob")
	require.NoError(t, err)
	assert.True(t, recorded, "a different name is not affected by alice's cooldown")
}

func TestAttendanceServiceTimestampFormat(t *testing.T) {
	svc, repo := newTestAttendanceService(t, time.Second)

	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 14, 5, 9, 0, time.UTC)
	}

	recorded, err := svc.Record("alice")
	require.NoError(t, err)
	require.True(t, recorded)

	records, err := repo.Query("alice", "2026-08-28")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-08-28 14:05:09", records[0].Timestamp)
}

func TestAttendanceServiceDelete(t *testing.T) {
	svc, repo := newTestAttendanceService(t, time.Second)

	record, err := repo.Insert("alice", "2026-08-28 09:00:00")
	require.NoError(t, err)

	deleted, err := svc.Delete(record.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(record.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAttendanceServiceExportCSV(t *testing.T) {
	svc, repo := newTestAttendanceService(t, time.Second)

	_, err := repo.Insert("alice", "2026-08-28 09:00:00")
	require.NoError(t, err)
	_, err = repo.Insert("bob", "2026-08-28 10:00:00")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(&buf, "", ""))

	want := "ID,Name,Timestamp\n" +
		"2,bob,2026-08-28 10:00:00\n" +
		"1,alice,2026-08-28 09:00:00\n"
	assert.Equal(t, want, buf.String())
}

func TestNewAttendanceServiceDefaultCooldown(t *testing.T) {
	svc, _ := newTestAttendanceService(t, 0)
	assert.Equal(t, DefaultCooldown, svc.cooldown)
}
