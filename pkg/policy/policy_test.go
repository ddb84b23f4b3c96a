package policy_test

import (
	"testing"

	"county-task-api/entity"
	"county-task-api/pkg/policy"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessCounty(t *testing.T) {
	countyA := int64(1)
	countyB := int64(2)

	admin := entity.User{ID: 10, Role: entity.RoleAdmin}
	countyUser := entity.User{ID: 11, Role: entity.RoleCountyUser, CountyID: &countyA}
	orphanUser := entity.User{ID: 12, Role: entity.RoleCountyUser}

	assert.True(t, policy.CanAccessCounty(admin, countyA))
	assert.True(t, policy.CanAccessCounty(admin, countyB))

	assert.True(t, policy.CanAccessCounty(countyUser, countyA))
	assert.False(t, policy.CanAccessCounty(countyUser, countyB))

	// county user without a county sees nothing
	assert.False(t, policy.CanAccessCounty(orphanUser, countyA))
	assert.False(t, policy.CanAccessCounty(orphanUser, countyB))
}

func TestIsAdmin(t *testing.T) {
	countyA := int64(1)

	assert.True(t, policy.IsAdmin(entity.User{Role: entity.RoleAdmin}))
	assert.False(t, policy.IsAdmin(entity.User{Role: entity.RoleCountyUser, CountyID: &countyA}))
	assert.False(t, policy.IsAdmin(entity.User{}))
}
