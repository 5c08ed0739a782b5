package db

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	_ "liyu1981.xyz/vessel-resource-service/pkg/testing"
)

func tableExists(db *gorm.DB, tableName string) bool {
	var count int64
	err := db.Raw(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, tableName,
	).Scan(&count).Error
	return err == nil && count > 0
}

func TestWithMemorySqlite(t *testing.T) {
	common.SetTestLoggerNop()

	dialector := UseMemorySqliteDialector()

	instance := GetInstance(dialector)
	if instance == nil {
		t.Fatal("Expected non-nil DB instance")
	}

	var tables = []string{
		"resources", "resource_history", "resource_deliveries",
		"alerts", "threshold_settings", "crew_members", "engine_states",
	}
	for _, table := range tables {
		if !tableExists(instance.Conn, table) {
			t.Errorf("Expected table %q to exist after migration", table)
		}
	}
}

func TestSingletonConcurrency(t *testing.T) {
	common.SetTestLoggerNop()

	const goroutineCount = 20

	var wg sync.WaitGroup
	instances := make(chan *DB, goroutineCount)

	for range goroutineCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			instance := GetInstance(UseMemorySqliteDialector())
			instances <- instance
		}()
	}

	wg.Wait()
	close(instances)

	var first *DB
	for inst := range instances {
		if first == nil {
			first = inst
			continue
		}
		if inst != first {
			t.Error("Expected all instances to be the same (singleton), but found different ones")
		}
	}
}

func TestOpenIsolatedDatabases(t *testing.T) {
	common.SetTestLoggerNop()

	a, err := Open(UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	defer a.Close()

	b, err := Open(UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Conn.Exec(`INSERT INTO crew_members (id, name) VALUES ('c1', 'Ana')`).Error)

	var countA, countB int64
	require.NoError(t, a.Conn.Table("crew_members").Count(&countA).Error)
	require.NoError(t, b.Conn.Table("crew_members").Count(&countB).Error)
	assert.Equal(t, int64(1), countA)
	assert.Equal(t, int64(0), countB)
}

func TestUseDialector(t *testing.T) {
	d, err := UseDialector("file", "", "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = UseDialector("postgres", "", "host=localhost user=vessel dbname=vessel")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = UseDialector("postgres", "", "")
	assert.Error(t, err)

	_, err = UseDialector("mongo", "", "")
	assert.Error(t, err)
}
