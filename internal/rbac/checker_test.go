package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has("student", "session:create"))
	assert.True(t, c.Has("student", "session:view-own"))
	assert.False(t, c.Has("student", "session:view-child"))
	assert.False(t, c.Has("student", "admin:anything"))

	assert.True(t, c.Has("parent", "progress:view-child"))
	assert.False(t, c.Has("parent", "session:create"))

	assert.True(t, c.Has("admin", "session:create"))
	assert.True(t, c.Has("admin", "anything:at-all"))

	assert.False(t, c.Has("unknown-role", "session:create"))
	assert.False(t, c.Has("", "session:create"))
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{
		"viewer": {"session:view-*"},
	})
	assert.True(t, c.Has("viewer", "session:view-own"))
	assert.True(t, c.Has("viewer", "session:view-child"))
	assert.False(t, c.Has("viewer", "session:create"))
}

func TestCheckerAnyAll(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Any("student", "session:view-child", "session:view-own"))
	assert.False(t, c.Any("student", "session:view-child", "progress:view-child"))
	assert.True(t, c.All("student", "session:create", "session:interact"))
	assert.False(t, c.All("student", "session:create", "session:view-child"))
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, SubjectFromContext(ctx))
	assert.Empty(t, RoleFromContext(ctx))

	ctx = WithSubject(WithRole(ctx, "student"), "u1")
	assert.Equal(t, "u1", SubjectFromContext(ctx))
	assert.Equal(t, "student", RoleFromContext(ctx))
}
